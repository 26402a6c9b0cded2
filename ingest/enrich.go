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

package ingest

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/tornado-sh/tornado/event"
	"github.com/tornado-sh/tornado/value"
	"github.com/tornado-sh/tornado/xerr"
)

// TenantExtractor derives a tenant id from the source subject and stores it
// in the event metadata. A subject the pattern does not match leaves the
// event untouched.
type TenantExtractor struct {
	regex *regexp.Regexp
}

func NewTenantExtractor(pattern string) (*TenantExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, xerr.ErrConfig("tenant pattern %q: %v", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, xerr.ErrConfig("tenant pattern %q needs a capture group", pattern)
	}
	return &TenantExtractor{regex: re}, nil
}

// Process extracts the tenant id from subject into metadata.tenant_id.
func (x *TenantExtractor) Process(ctx context.Context, subject string, ev *event.Event) (*event.Event, error) {
	match := x.regex.FindStringSubmatch(subject)
	if match == nil {
		slog.DebugContext(ctx, "cannot extract tenant_id from subject", slog.String("subject", subject))
		return ev, nil
	}

	tenantID := match[1]
	if err := ev.AddToMetadata("tenant_id", value.Text(tenantID)); err != nil {
		return nil, err
	}
	return ev, nil
}
