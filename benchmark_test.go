// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type mockResponseWriter struct{}

func (m *mockResponseWriter) Header() (h http.Header) {
	return http.Header{}
}

func (m *mockResponseWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func (m *mockResponseWriter) WriteString(s string) (n int, err error) {
	return len(s), nil
}

func (m *mockResponseWriter) WriteHeader(int) {}

var staticRoutes = getRoutes(
	"/",
	"/cmd.html",
	"/code.html",
	"/contrib.html",
	"/contribute.html",
	"/debugging_with_gdb.html",
	"/docs.html",
	"/effective_go.html",
	"/files.log",
	"/gccgo_contribute.html",
	"/gccgo_install.html",
	"/go-logo-black.png",
	"/go-logo-blue.png",
	"/go-logo-white.png",
	"/go1.1.html",
	"/go1.2.html",
	"/go1.html",
	"/go1compat.html",
	"/go_faq.html",
	"/go_mem.html",
	"/go_spec.html",
	"/help.html",
	"/ie.css",
	"/install-source.html",
	"/install.html",
	"/logo-153x55.png",
	"/Makefile",
	"/root.html",
	"/share.png",
	"/sieve.gif",
	"/tos.html",
	"/articles",
	"/articles/go_command.html",
	"/articles/index.html",
	"/articles/wiki",
	"/articles/wiki/edit.html",
	"/articles/wiki/final-noclosure.go",
	"/articles/wiki/final-noerror.go",
	"/articles/wiki/final.go",
	"/articles/wiki/get.go",
	"/articles/wiki/index.html",
	"/articles/wiki/Makefile",
	"/articles/wiki/part1.go",
	"/articles/wiki/part2.go",
	"/articles/wiki/part3.go",
	"/articles/wiki/test.bash",
)

var githubAPI = []route{
	{http.MethodGet, "/authorizations"},
	{http.MethodGet, "/authorizations/{id}"},
	{http.MethodPost, "/authorizations"},
	{http.MethodDelete, "/authorizations/{id}"},
	{http.MethodGet, "/applications/{client_id}/tokens/{access_token}"},
	{http.MethodDelete, "/applications/{client_id}/tokens"},
	{http.MethodDelete, "/applications/{client_id}/tokens/{access_token}"},
	{http.MethodGet, "/events"},
	{http.MethodGet, "/repos/{owner}/{repo}/events"},
	{http.MethodGet, "/networks/{owner}/{repo}/events"},
	{http.MethodGet, "/orgs/{org}/events"},
	{http.MethodGet, "/users/{user}/received_events"},
	{http.MethodGet, "/users/{user}/received_events/public"},
	{http.MethodGet, "/users/{user}/events"},
	{http.MethodGet, "/users/{user}/events/public"},
	{http.MethodGet, "/users/{user}/events/orgs/{org}"},
	{http.MethodGet, "/feeds"},
	{http.MethodGet, "/notifications"},
	{http.MethodGet, "/repos/{owner}/{repo}/notifications"},
	{http.MethodPut, "/notifications"},
	{http.MethodPut, "/repos/{owner}/{repo}/notifications"},
	{http.MethodGet, "/notifications/threads/{id}"},
	{http.MethodGet, "/notifications/threads/{id}/subscription"},
	{http.MethodPut, "/notifications/threads/{id}/subscription"},
	{http.MethodDelete, "/notifications/threads/{id}/subscription"},
	{http.MethodGet, "/repos/{owner}/{repo}/stargazers"},
	{http.MethodGet, "/users/{user}/starred"},
	{http.MethodGet, "/user/starred"},
	{http.MethodGet, "/user/starred/{owner}/{repo}"},
	{http.MethodPut, "/user/starred/{owner}/{repo}"},
	{http.MethodDelete, "/user/starred/{owner}/{repo}"},
	{http.MethodGet, "/users/{user}/gists"},
	{http.MethodGet, "/gists"},
	{http.MethodGet, "/gists/{id}"},
	{http.MethodPost, "/gists"},
	{http.MethodPut, "/gists/{id}/star"},
	{http.MethodDelete, "/gists/{id}/star"},
	{http.MethodGet, "/gists/{id}/star"},
	{http.MethodPost, "/gists/{id}/forks"},
	{http.MethodDelete, "/gists/{id}"},
	{http.MethodGet, "/repos/{owner}/{repo}/git/blobs/{sha}"},
	{http.MethodPost, "/repos/{owner}/{repo}/git/blobs"},
	{http.MethodGet, "/repos/{owner}/{repo}/git/commits/{sha}"},
	{http.MethodPost, "/repos/{owner}/{repo}/git/commits"},
	{http.MethodGet, "/repos/{owner}/{repo}/git/refs"},
	{http.MethodPost, "/repos/{owner}/{repo}/git/refs"},
	{http.MethodGet, "/repos/{owner}/{repo}/git/tags/{sha}"},
	{http.MethodPost, "/repos/{owner}/{repo}/git/tags"},
	{http.MethodGet, "/repos/{owner}/{repo}/git/trees/{sha}"},
	{http.MethodPost, "/repos/{owner}/{repo}/git/trees"},
	{http.MethodGet, "/issues"},
	{http.MethodGet, "/user/issues"},
	{http.MethodGet, "/orgs/{org}/issues"},
	{http.MethodGet, "/repos/{owner}/{repo}/issues"},
	{http.MethodGet, "/repos/{owner}/{repo}/issues/{number}"},
	{http.MethodPost, "/repos/{owner}/{repo}/issues"},
	{http.MethodGet, "/repos/{owner}/{repo}/issues/{number}/comments"},
	{http.MethodPost, "/repos/{owner}/{repo}/issues/{number}/comments"},
	{http.MethodGet, "/repos/{owner}/{repo}/issues/{number}/events"},
	{http.MethodGet, "/repos/{owner}/{repo}/labels"},
}

// requestPath replaces every parameter of pattern with a fixed value.
func requestPath(pattern string) string {
	var sb strings.Builder
	for {
		ps := strings.IndexByte(pattern, '{')
		if ps < 0 {
			sb.WriteString(pattern)
			return sb.String()
		}
		pe := strings.IndexByte(pattern[ps:], '}')
		sb.WriteString(pattern[:ps])
		sb.WriteString("value")
		pattern = pattern[ps+pe+1:]
	}
}

// ginPattern rewrites {name} parameters to gin's :name syntax.
func ginPattern(pattern string) string {
	return strings.NewReplacer("{", ":", "}", "").Replace(pattern)
}

func benchRoute(b *testing.B, router http.Handler, routes []route) {
	w := new(mockResponseWriter)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	u := r.URL

	paths := make([]string, len(routes))
	for i, rte := range routes {
		paths[i] = requestPath(rte.pattern)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		for i, rte := range routes {
			r.Method = rte.method
			r.RequestURI = paths[i]
			u.Path = paths[i]
			router.ServeHTTP(w, r)
		}
	}
}

func newBenchRouter(b *testing.B, routes []route) *Router {
	mux, err := New()
	require.NoError(b, err)
	for _, rte := range routes {
		require.NoError(b, mux.Handle(rte.method, rte.pattern, emptyHandler))
	}
	mux.Freeze()
	return mux
}

func newBenchGin(routes []route) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	for _, rte := range routes {
		r.Handle(rte.method, ginPattern(rte.pattern), func(c *gin.Context) {})
	}
	return r
}

func BenchmarkStaticAll(b *testing.B) {
	benchRoute(b, newBenchRouter(b, staticRoutes), staticRoutes)
}

func BenchmarkGinStaticAll(b *testing.B) {
	benchRoute(b, newBenchGin(staticRoutes), staticRoutes)
}

func BenchmarkGithubParamsAll(b *testing.B) {
	benchRoute(b, newBenchRouter(b, githubAPI), githubAPI)
}

func BenchmarkGinGithubParamsAll(b *testing.B) {
	benchRoute(b, newBenchGin(githubAPI), githubAPI)
}

func BenchmarkLookupParallel(b *testing.B) {
	tree := newBenchRouter(b, githubAPI).Tree()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tree.Lookup(http.MethodGet, "/repos/muxtree/muxtree/issues/42/comments")
		}
	})
}

func BenchmarkRegexpBacktracking(b *testing.B) {
	routes := getRoutes(
		"/date/{yyyy:\\d{4}}/{mm:\\d{2}}/{dd:\\d{2}}",
		"/date/{yyyy:\\d{4}}/{mm:\\d{2}}/{slug}",
		"/date/{yyyy:\\d{4}}/{slug}",
		"/date/*rest",
	)
	tree := newBenchRouter(b, routes).Tree()

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		_ = tree.Lookup(http.MethodGet, "/date/2024/06/latest")
	}
}

func BenchmarkMethodNotAllowed(b *testing.B) {
	tree := newBenchRouter(b, githubAPI).Tree()

	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		_ = tree.Lookup(http.MethodPatch, "/gists/42/star")
	}
}
