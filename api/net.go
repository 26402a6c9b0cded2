// Copyright 2025 Binaek Sarkar
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"fmt"
	"net"

	"github.com/binaek/gocoll/collection"
	"golang.org/x/exp/slices"
)

// predefined listen names and the host they stand for
var predefinedHosts = map[string]string{
	"local":    "localhost",
	"local4":   "127.0.0.1",
	"local6":   "[::1]",
	"network":  "",
	"network4": "0.0.0.0",
	"network6": "[::]",
}

// resolveBindings expands the listen addresses into host:port bindings.
// A predefined name (local, network4, ...) must be the only entry; explicit
// hosts may be given in any number.
func resolveBindings(port int, listen []string) ([]string, error) {
	predefined := make([]string, 0, len(predefinedHosts))
	for name := range predefinedHosts {
		predefined = append(predefined, name)
	}

	for _, listenAddr := range listen {
		if slices.Contains(predefined, listenAddr) && len(listen) != 1 {
			return nil, fmt.Errorf("when using predefined listen addresses, there must be exactly one address")
		}
	}

	if host, ok := predefinedHosts[listen[0]]; ok {
		return []string{net.JoinHostPort(host, fmt.Sprintf("%d", port))}, nil
	}

	return collection.Map(
		collection.From(listen...),
		func(listenAddr string) string {
			return net.JoinHostPort(listenAddr, fmt.Sprintf("%d", port))
		},
	).Elements(), nil
}
