package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetchCSV_ParsesHeaderAndRows(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte("Company,Position,Source,Status 1\nAcme,Intern,LinkedIn,Offered\nGlobex,Intern,Referral,\n"))
	})

	header, rows, err := c.FetchCSV(context.Background(), "sheet-42", "Applications")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/spreadsheets/d/sheet-42/gviz/tq" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "tqx=out:csv&sheet=Applications" {
		t.Errorf("query = %q", gotQuery)
	}
	wantHeader := []string{"Company", "Position", "Source", "Status 1"}
	if diff := cmp.Diff(wantHeader, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if len(rows) != 2 || rows[0][0] != "Acme" {
		t.Errorf("rows = %v", rows)
	}
}

func TestFetchCSV_UnevenRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Company,Source,Status 1\nAcme,LinkedIn\n"))
	})
	_, rows, err := c.FetchCSV(context.Background(), "id", "t")
	if err != nil {
		t.Fatalf("uneven rows should parse: %v", err)
	}
	if len(rows) != 1 || len(rows[0]) != 2 {
		t.Errorf("rows = %v", rows)
	}
}

func TestFetchCSV_SourceUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {}},
		{"not csv", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("\"unterminated\nquote,field\n"))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			_, _, err := c.FetchCSV(context.Background(), "id", "t")
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Errorf("err = %v, want ErrSourceUnavailable", err)
			}
		})
	}
}

func TestFetchCSV_EmptySheetID(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = c.FetchCSV(context.Background(), "", "Applications")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestFetchCSV_UnreachableHost(t *testing.T) {
	c, err := New(WithBaseURL("http://127.0.0.1:1"))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = c.FetchCSV(context.Background(), "id", "t")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
}
