//go:build !js
// +build !js

// Command server serves the built shim and an application directory for trying the
// emulator in a browser.
package main

import (
	"flag"
	"net/http"
	"os"
	"strings"

	"github.com/hack-pad/palmshim/internal/log"
)

func main() {
	dir := flag.String("dir", "./out", "Directory holding shim.wasm, wasm_exec.js and the app")
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()
	log.SetOutput(os.Stderr)

	fs := http.FileServer(http.Dir(*dir))
	log.Print("Serving " + *dir + " on http://localhost" + *addr)
	err := http.ListenAndServe(*addr, http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.Header().Add("Cache-Control", "no-cache")
		if strings.HasSuffix(req.URL.Path, ".wasm") {
			resp.Header().Set("Content-Type", "application/wasm")
		}
		fs.ServeHTTP(resp, req)
	}))
	if err != nil {
		log.Error(err)
	}
}
