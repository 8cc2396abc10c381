// Package config provides configuration parsing for vbind.
//
// The configuration is stored in vbind.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "rootPath": "/app/",
//	  "timezone": "Europe/Berlin",
//	  "validation": {
//	    "number": {"message": "Invalid number", "enabled": true},
//	    "bigint": {"enabled": false}
//	  },
//	  "preview": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "pushInterval": "50ms"
//	  },
//	  "snapshot": {
//	    "bucket": "my-snapshots",
//	    "prefix": "previews/",
//	    "region": "eu-central-1"
//	  },
//	  "logLevel": "debug"
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	b := bind.New(doc, cfg.BinderOptions(logger)...)
package config
