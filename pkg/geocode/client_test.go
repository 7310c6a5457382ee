package geocode

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestClientResolveFirstQueryMatches(t *testing.T) {
	respBody := `[{"lat":"45.4642","lon":"9.1900","display_name":"Milan, Italy"}]`

	var capturedURL string
	var capturedAgent string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedAgent = req.Header.Get("User-Agent")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("wanderstay-test", WithBaseURL("http://geo.test"), WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	coords, err := client.Resolve(context.Background(), "Milan", "Italy")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if coords.Latitude != 45.4642 || coords.Longitude != 9.19 {
		t.Fatalf("unexpected coordinates %+v", coords)
	}
	if capturedAgent != "wanderstay-test" {
		t.Fatalf("user agent header missing, got %q", capturedAgent)
	}
	if !strings.Contains(capturedURL, "q=Milan%2C+Italy") {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
}

func TestClientResolveDropsSpecificPartOnEmptyResult(t *testing.T) {
	var queries []string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		queries = append(queries, req.URL.Query().Get("q"))
		body := `[]`
		if len(queries) == 2 {
			body = `[{"lat":"52.5200","lon":"13.4050"}]`
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("wanderstay-test", WithBaseURL("http://geo.test"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	coords, err := client.Resolve(context.Background(), "Nonexistent Hamlet", "Germany")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d: %v", len(queries), queries)
	}
	if queries[0] != "Nonexistent Hamlet, Germany" || queries[1] != "Germany" {
		t.Fatalf("unexpected query sequence %v", queries)
	}
	if coords.Latitude != 52.52 || coords.Longitude != 13.405 {
		t.Fatalf("unexpected coordinates %+v", coords)
	}
}

func TestClientResolveFallsBackToDefault(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[]`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("wanderstay-test", WithBaseURL("http://geo.test"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	coords, err := client.Resolve(context.Background(), "Atlantis", "Nowhere")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if coords != DefaultCoordinates {
		t.Fatalf("expected default coordinates, got %+v", coords)
	}
}

func TestClientResolveRequiresAddressParts(t *testing.T) {
	client, err := NewClient("wanderstay-test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Resolve(context.Background(), "", "  "); err == nil {
		t.Fatal("expected validation error")
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
