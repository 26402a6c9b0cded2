// SPDX-License-Identifier: Apache-2.0
//
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

package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"text/tabwriter"
)

// Info holds version information for the application.
type Info struct {
	Name         string
	Description  string
	Website      string
	GitVersion   string
	GitCommit    string
	GitTreeState string
	BuildDate    string
	BuiltBy      string
}

// Option is a function that configures an Info struct.
type Option func(*Info)

// WithAppDetails sets the application name, description, and website.
func WithAppDetails(name, description, website string) Option {
	return func(i *Info) {
		i.Name = name
		i.Description = description
		i.Website = website
	}
}

// WithBuildInfo fills commit details from the embedded go build info.
func WithBuildInfo() Option {
	return func(i *Info) {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				i.GitCommit = setting.Value
			case "vcs.time":
				i.BuildDate = setting.Value
			case "vcs.modified":
				if setting.Value == "true" {
					i.GitTreeState = "dirty"
				} else {
					i.GitTreeState = "clean"
				}
			}
		}
	}
}

// New builds an Info applying the given options.
func New(gitVersion string, opts ...Option) Info {
	i := Info{GitVersion: gitVersion}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

func (i Info) String() string {
	b := strings.Builder{}
	if i.Name != "" {
		b.WriteString(i.Name)
		b.WriteString(" ")
	}
	b.WriteString(i.GitVersion)
	b.WriteString("\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	if i.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", i.Description)
	}
	if i.Website != "" {
		fmt.Fprintf(w, "Website:\t%s\n", i.Website)
	}
	if i.GitCommit != "" {
		fmt.Fprintf(w, "Git Commit:\t%s\n", i.GitCommit)
	}
	if i.GitTreeState != "" {
		fmt.Fprintf(w, "Git Tree:\t%s\n", i.GitTreeState)
	}
	if i.BuildDate != "" {
		fmt.Fprintf(w, "Build Date:\t%s\n", i.BuildDate)
	}
	if i.BuiltBy != "" {
		fmt.Fprintf(w, "Built By:\t%s\n", i.BuiltBy)
	}
	w.Flush()

	b.WriteString("\n")

	return b.String()
}
