// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package extension

import (
	"bytes"
	"encoding/json"
	"text/template"
)

// All values are rendered as JSON which is a valid JavaScript expression.
var backgroundTemplate = template.Must(template.New(BackgroundFile).Funcs(template.FuncMap{
	"js": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}).Parse(`var config = {{ js .Config }};

chrome.proxy.settings.set({value: config, scope: {{ js .Scope }}}, function() {
    if (chrome.runtime.lastError) {
        console.error("proxy settings rejected", chrome.runtime.lastError);
    }
});
{{ range .Listeners }}
chrome.webRequest.onAuthRequired.addListener(
{{- if .Async }}
    function(details, callbackFn) {
        callbackFn({{ js .Response }});
    },
{{- else }}
    function(details) {
        return {{ js .Response }};
    },
{{- end }}
    {{ js .Filter }},
    {{ js .ExtraInfoSpec }}
);
{{ end -}}
`))

type backgroundListener struct {
	Async         bool
	Response      any
	Filter        any
	ExtraInfoSpec any
}

type backgroundData struct {
	Config    any
	Scope     any
	Listeners []backgroundListener
}

func renderBackground(d *backgroundData) ([]byte, error) {
	var buf bytes.Buffer
	if err := backgroundTemplate.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
