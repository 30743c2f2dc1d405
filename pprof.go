//go:build pprof

package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
)

func init() {
	addr, ok := os.LookupEnv("MOUSEFOLLOW_PPROF")
	if !ok {
		addr = "localhost:6060"
	}
	fmt.Fprintln(os.Stderr, "Started pprof server on", addr)
	go func() {
		fmt.Fprintln(os.Stderr, http.ListenAndServe(addr, nil))
	}()
}
