// Package factory provides the generic registry used to build pluggable
// modules (authorities, metrics sinks) from configuration. A module is
// selected by a type string and configured from a raw settings map that
// factories decode into typed structs with Decode.
//
//	reg := factory.NewRegistry[authority.Authority]("authority")
//	_ = reg.Register("sqlite", func(conf map[string]any) (authority.Authority, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return sqlite.Open(context.Background(), c.Path)
//	})
package factory
