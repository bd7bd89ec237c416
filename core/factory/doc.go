// Package factory provides a small generic registry used to instantiate
// pluggable modules (series stores, metrics sinks) from configuration.
// Modules are defined by a type string and a map of raw settings; factories
// decode the settings into typed structs and return the concrete
// implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[store.SeriesStore]()
//	reg.Register("csv", func(conf map[string]any) (store.SeriesStore, error) {
//	    var c struct{ Dir string `json:"dir"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return store.NewCSVStore(c.Dir)
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "csv", Conf: map[string]any{"dir": "out"}})
package factory
