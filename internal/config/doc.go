// Package config reads the daemon's YAML configuration file.
//
// A minimal file names the registry and the key list location:
//
//	registry:
//	  url: https://doors.example.com/api/keys
//	  token: s3cret
//	persistence:
//	  path: /var/lib/keyward/keys.bin
//
// Everything else has a default: the registry is polled every 60
// seconds with a 10 second request timeout, the bus subsystem is "w1",
// and logging runs at info. The status endpoint is off unless a
// status section with an addr appears.
//
// Load applies defaults and validates in one pass; a Config it returns
// is ready to use. The file is read once at startup, there is no
// reloading.
package config
