package addressfields

import "strconv"

// EndpointMapping names the option fields in a zones response.
type EndpointMapping struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Endpoint tells a select widget how to load zone options lazily.
type Endpoint struct {
	URL           string            `json:"url"`
	Method        string            `json:"method"`
	ResultsPath   string            `json:"resultsPath"`
	Params        map[string]string `json:"params,omitempty"`
	DynamicParams map[string]string `json:"dynamicParams,omitempty"`
	Mapping       EndpointMapping   `json:"mapping"`
}

// ZonesEndpoint returns the endpoint description for the zone options of
// country, mounted under basePath.
//
// The generated endpoint:
// - points at <basePath><RoutePath><ZonesPath> (default: <basePath>/api/address-fields/zones)
// - uses resultsPath "data" with value/label mapping
// - includes the country, locale and default limit params
// - includes a dynamic search param mapped to "{{self}}"
func ZonesEndpoint(basePath, country, locale string, fns ...OptionFn) Endpoint {
	opts := NewOptions(fns...)
	url := mountPath(basePath, opts.RoutePath) + normalizePath(opts.ZonesPath)
	return zonesEndpoint(url, country, locale, opts)
}

func zonesEndpoint(url, country, locale string, opts Options) Endpoint {
	params := map[string]string{
		opts.LimitParam: strconv.Itoa(opts.DefaultLimit),
	}
	if country != "" {
		params[opts.CountryParam] = country
	}
	if locale != "" {
		params[opts.LocaleParam] = locale
	}

	return Endpoint{
		URL:         url,
		Method:      "GET",
		ResultsPath: "data",
		Params:      params,
		DynamicParams: map[string]string{
			opts.SearchParam: "{{self}}",
		},
		Mapping: EndpointMapping{
			Value: "value",
			Label: "label",
		},
	}
}
