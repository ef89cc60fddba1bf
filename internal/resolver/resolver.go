// Package resolver computes the base reference for a document target and
// owns the script contract injected into the rendering surface.
//
// The base reference is the prefix against which relative resource paths
// in the Markdown (images, etc.) resolve when rendered, so they point at
// the document's own location rather than the host's working directory.
package resolver

import (
	"encoding/json"
	"path"
	"path/filepath"
	"strings"
)

// ComputeBase derives the base reference for a target. Classification is
// purely syntactic: a target containing "://" is remote, anything else is
// a local path. No filesystem or network probing. Idempotent.
//
// Remote: the prefix up to and including the last '/'; none when no '/'
// follows the scheme. Local: the absolute directory of the target as a
// file:// reference with forward slashes and a trailing slash; none when
// the target is empty or a bare file name.
func ComputeBase(target string) (string, bool) {
	if target == "" {
		return "", false
	}

	if i := strings.Index(target, "://"); i >= 0 {
		rest := target[i+3:]
		j := strings.LastIndex(rest, "/")
		if j < 0 {
			return "", false
		}
		return target[:i+3+j+1], true
	}

	norm := strings.ReplaceAll(target, "\\", "/")
	dir := path.Dir(norm)
	if dir == "." || dir == "" {
		return "", false
	}
	abs, err := filepath.Abs(filepath.FromSlash(dir))
	if err != nil {
		return "", false
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasSuffix(abs, "/") {
		abs += "/"
	}
	if strings.HasPrefix(abs, "/") {
		return "file://" + abs, true
	}
	// Windows drive paths need the extra slash after the authority.
	return "file:///" + abs, true
}

// BaseScript returns the script that upserts the single <base> element in
// the loaded template and points it at base. The upsert is idempotent and
// defensive about an absent document head, so it is safe to execute any
// number of times, including against a template that was never prepared
// for it.
func BaseScript(base string) string {
	var b strings.Builder
	b.WriteString("(function(){")
	b.WriteString("var head=document.head||document.getElementsByTagName('head')[0];")
	b.WriteString("if(!head){return;}")
	b.WriteString("var b=document.querySelector('base');")
	b.WriteString("if(!b){b=document.createElement('base');head.appendChild(b);}")
	b.WriteString("b.href=")
	b.WriteString(jsString(base))
	b.WriteString(";")
	b.WriteString("if(window.refreshMarkdown){refreshMarkdown();}")
	b.WriteString("})();")
	return b.String()
}

// SetTextScript returns the script that replaces the editable Markdown
// text inside the loaded template.
func SetTextScript(text string) string {
	return "(function(){if(window.setMarkdown){setMarkdown(" + jsString(text) + ");}})();"
}

// jsString encodes s as a JavaScript string literal. JSON string syntax
// is a subset of JS, which keeps quoting and control characters safe.
func jsString(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(out)
}
