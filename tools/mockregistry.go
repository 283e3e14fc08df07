//go:build ignore

package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
)

// mockregistry serves a key list file over HTTP the way the real
// registry does, so a gate can be run end to end without backend
// access. The file is re-read on every request; edit it while the
// gate is running and the next refresh picks up the change.
func main() {
	addr := flag.String("addr", ":9090", "listen address")
	file := flag.String("file", "", "key list file to serve (id,name lines)")
	token := flag.String("token", "", "require this X-TOKEN value (empty disables the check)")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: mockregistry -file keys.txt [-addr :9090] [-token secret]")
		fmt.Println("Example: mockregistry -file testdata/keys.txt -token dev-token")
		os.Exit(1)
	}

	if _, err := os.ReadFile(*file); err != nil {
		fmt.Printf("Error reading key list: %v\n", err)
		os.Exit(1)
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if *token != "" && r.Header.Get("X-TOKEN") != *token {
			log.Printf("%s %s from %s: bad token", r.Method, r.URL.Path, r.RemoteAddr)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		data, err := os.ReadFile(*file)
		if err != nil {
			log.Printf("%s %s from %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)
			http.Error(w, "key list unavailable", http.StatusInternalServerError)
			return
		}

		log.Printf("%s %s from %s: served %d bytes", r.Method, r.URL.Path, r.RemoteAddr, len(data))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write(data)
	})

	fmt.Printf("=== Mock Key Registry ===\n")
	fmt.Printf("Serving: %s\n", *file)
	fmt.Printf("Listen:  %s\n", *addr)
	if *token != "" {
		fmt.Printf("Token:   required\n")
	}
	fmt.Println()

	if err := http.ListenAndServe(*addr, nil); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
}
