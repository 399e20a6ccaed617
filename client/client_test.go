package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, base string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBackoffBase(time.Millisecond)}, opts...)
	c, err := New(base, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	for _, base := range []string{"", "   ", "not-a-url", "/relative/only"} {
		if _, err := New(base); !errors.Is(err, ErrNoBaseURL) {
			t.Fatalf("New(%q): got %v, want ErrNoBaseURL", base, err)
		}
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithTokenProvider(StaticToken("abc123")))
	if _, err := c.Do(context.Background(), RequestDescriptor{Path: "/clients"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got != "token abc123" {
		t.Fatalf("Authorization = %q, want %q", got, "token abc123")
	}
}

func TestAuthorizationHeaderOmittedWhenEmpty(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	if _, err := c.Do(context.Background(), RequestDescriptor{Path: "/clients"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if present {
		t.Fatal("Authorization header sent for empty token")
	}
}

func TestPaginationFlattensInOrder(t *testing.T) {
	pageSizes := []int{10, 10, 5}
	var mux http.ServeMux
	mux.HandleFunc("/deals", func(w http.ResponseWriter, r *http.Request) {
		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		start := 0
		for i := 0; i < page; i++ {
			start += pageSizes[i]
		}
		items := make([]item, pageSizes[page])
		for i := range items {
			items[i] = item{ID: start + i, Name: fmt.Sprintf("deal-%d", start+i)}
		}
		var next *string
		if page < len(pageSizes)-1 {
			n := fmt.Sprintf("/deals?page=%d", page+1)
			next = &n
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results":  items,
			"next":     next,
			"previous": nil,
			"count":    25,
		})
	})
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	got, err := store.Fetch(context.Background(), "/deals")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 25 {
		t.Fatalf("got %d items, want 25", len(got))
	}
	for i, it := range got {
		if it.ID != i {
			t.Fatalf("item %d has ID %d, order not preserved", i, it.ID)
		}
	}
}

func TestNonPaginatedArrayPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`)
	}))
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	got, err := store.Fetch(context.Background(), "/clients")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected items: %+v", got)
	}
}

func TestRetryCapAtThree(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	const base = 4 * time.Millisecond
	store := NewStore[item](newTestClient(t, srv.URL, WithBackoffBase(base)))
	if _, err := store.Fetch(context.Background(), "/payments"); err == nil {
		t.Fatal("Fetch succeeded, want failure")
	}

	start := time.Now()
	for i := 1; i <= 3; i++ {
		if err := store.Retry(context.Background()); err == nil {
			t.Fatalf("Retry %d succeeded, want failure", i)
		}
		if store.RetryCount() != i {
			t.Fatalf("RetryCount = %d after retry %d", store.RetryCount(), i)
		}
	}
	// The n-th replay waits base << n, so three replays take at least
	// base + 2*base + 4*base.
	if elapsed := time.Since(start); elapsed < 7*base {
		t.Fatalf("three replays took %v, want at least %v", elapsed, 7*base)
	}

	before := hits.Load()
	if err := store.Retry(context.Background()); !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("fourth Retry: got %v, want ErrRetryExhausted", err)
	}
	if hits.Load() != before {
		t.Fatal("fourth Retry issued a request")
	}
	if hits.Load() != 4 {
		t.Fatalf("server saw %d requests, want 4 (initial + 3 replays)", hits.Load())
	}
}

func TestRetrySuccessResetsState(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, `{"message":"transient"}`, http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"id":7,"name":"ok"}]`)
	}))
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	if _, err := store.Fetch(context.Background(), "/invoices"); err == nil {
		t.Fatal("Fetch succeeded, want failure")
	}
	if err := store.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if store.Err() != nil {
		t.Fatalf("Err = %v after successful retry", store.Err())
	}
	if store.RetryCount() != 0 {
		t.Fatalf("RetryCount = %d, want 0", store.RetryCount())
	}
	got, ok := store.Data("/invoices")
	if !ok || len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("Data = %+v, %v", got, ok)
	}
}

func TestFreshRequestResetsRetryState(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	if _, err := store.Fetch(context.Background(), "/payments"); err == nil {
		t.Fatal("Fetch succeeded, want failure")
	}
	for i := 0; i < 3; i++ {
		if err := store.Retry(context.Background()); err == nil {
			t.Fatal("Retry succeeded, want failure")
		}
	}
	if err := store.Retry(context.Background()); !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("got %v, want ErrRetryExhausted", err)
	}

	// A fresh request to the same endpoint starts over: the exhausted
	// count from the earlier request must not carry across.
	if _, err := store.Fetch(context.Background(), "/payments"); err == nil {
		t.Fatal("Fetch succeeded, want failure")
	}
	if store.RetryCount() != 0 {
		t.Fatalf("RetryCount = %d after fresh request, want 0", store.RetryCount())
	}

	before := hits.Load()
	if err := store.Retry(context.Background()); err == nil {
		t.Fatal("Retry succeeded, want failure")
	} else if errors.Is(err, ErrRetryExhausted) {
		t.Fatal("Retry refused as exhausted after a fresh request")
	}
	if hits.Load() != before+1 {
		t.Fatalf("server saw %d requests after Retry, want %d", hits.Load(), before+1)
	}
	if store.RetryCount() != 1 {
		t.Fatalf("RetryCount = %d, want 1", store.RetryCount())
	}
}

func TestErrClearedWhileRequestInFlight(t *testing.T) {
	var fail atomic.Bool
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
			return
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()
	defer close(release)

	store := NewStore[item](newTestClient(t, srv.URL))
	fail.Store(true)
	if _, err := store.Fetch(context.Background(), "/deals"); err == nil {
		t.Fatal("Fetch succeeded, want failure")
	}
	if store.Err() == nil {
		t.Fatal("failure not recorded")
	}

	fail.Store(false)
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Fetch(context.Background(), "/deals")
	}()

	deadline := time.After(2 * time.Second)
	for !store.Loading("/deals") {
		select {
		case <-deadline:
			t.Fatal("request never started")
		case <-time.After(time.Millisecond):
		}
	}

	// The stale failure must not be reported while the new request runs.
	if err := store.Err(); err != nil {
		t.Fatalf("Err = %v during in-flight request, want nil", err)
	}

	store.Cancel("/deals")
	<-done
}

func TestTransformReappliedOnRetry(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, `{"message":"transient"}`, http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"id":1,"name":"alpha"},{"id":2,"name":"beta"}]`)
	}))
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	desc := RequestDescriptor{
		Method: http.MethodGet,
		Path:   "/clients",
		Transform: func(raw json.RawMessage) (json.RawMessage, error) {
			var items []item
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, err
			}
			for i := range items {
				items[i].Name = strings.ToUpper(items[i].Name)
			}
			return json.Marshal(items)
		},
	}

	if _, err := store.FetchWith(context.Background(), desc); err == nil {
		t.Fatal("FetchWith succeeded, want failure")
	}
	if err := store.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}

	got, ok := store.Data("/clients")
	if !ok || len(got) != 2 {
		t.Fatalf("Data = %+v, %v", got, ok)
	}
	if got[0].Name != "ALPHA" || got[1].Name != "BETA" {
		t.Fatalf("transform not applied on replay: %+v", got)
	}
}

func TestRetryReplaysSameRequest(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		buf := make([]byte, 1024)
		for {
			n, err := r.Body.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		bodies = append(bodies, r.Method+" "+r.URL.Path+" "+sb.String())
		http.Error(w, `{"message":"down"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	desc := RequestDescriptor{
		Method: http.MethodPost,
		Path:   "/deals",
		JSON:   map[string]any{"name": "big deal"},
	}
	if err := store.Send(context.Background(), desc, nil); err == nil {
		t.Fatal("Send succeeded, want failure")
	}
	// Mutating the original descriptor must not change the replay.
	desc.JSON = map[string]any{"name": "tampered"}
	if err := store.Retry(context.Background()); err == nil {
		t.Fatal("Retry succeeded, want failure")
	}

	if len(bodies) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(bodies))
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("replay differs from original:\n  %s\n  %s", bodies[0], bodies[1])
	}
}

func TestCancelClearsLoadingWithoutError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()
	defer close(release)

	store := NewStore[item](newTestClient(t, srv.URL))
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Fetch(context.Background(), "/commissions")
	}()

	deadline := time.After(2 * time.Second)
	for !store.Loading("/commissions") {
		select {
		case <-deadline:
			t.Fatal("request never started")
		case <-time.After(time.Millisecond):
		}
	}

	store.Cancel("/commissions")
	<-done

	if store.Loading("/commissions") {
		t.Fatal("still loading after Cancel")
	}
	if store.Err() != nil {
		t.Fatalf("Err = %v after Cancel, want nil", store.Err())
	}
	if store.RetryCount() != 0 {
		t.Fatalf("RetryCount = %d after Cancel", store.RetryCount())
	}
}

func TestDataPreservedOnFailedRefresh(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, `{"detail":"maintenance"}`, http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[{"id":1,"name":"kept"}]`)
	}))
	defer srv.Close()

	store := NewStore[item](newTestClient(t, srv.URL))
	if _, err := store.Fetch(context.Background(), "/clients"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	fail.Store(true)
	if _, err := store.Fetch(context.Background(), "/clients"); err == nil {
		t.Fatal("refresh succeeded, want failure")
	}

	got, ok := store.Data("/clients")
	if !ok || len(got) != 1 || got[0].Name != "kept" {
		t.Fatalf("previous data lost: %+v, %v", got, ok)
	}
	if store.Err() == nil {
		t.Fatal("failure not recorded")
	}
	if store.Err().Message != "maintenance" || store.Err().Status != http.StatusServiceUnavailable {
		t.Fatalf("Err = %+v", store.Err())
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{"message field", http.StatusForbidden, `{"message":"no access"}`, "no access", 403},
		{"detail field", http.StatusNotFound, `{"detail":"gone"}`, "gone", 404},
		{"error field", http.StatusBadRequest, `{"error":"bad input"}`, "bad input", 400},
		{"plain body", http.StatusInternalServerError, `oops`, "Internal Server Error", 500},
		{"empty body", http.StatusUnauthorized, ``, "Unauthorized", 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			_, err := c.Do(context.Background(), RequestDescriptor{Path: "/x"})
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("error type %T", err)
			}
			if ce.Message != tt.wantMsg || ce.Status != tt.wantStatus {
				t.Fatalf("got %+v, want message=%q status=%d", ce, tt.wantMsg, tt.wantStatus)
			}
		})
	}
}

func TestMultipartOmitsJSONContentType(t *testing.T) {
	var contentType string
	var field, filename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			field = r.FormValue("note")
			if fhs := r.MultipartForm.File["receipt"]; len(fhs) > 0 {
				filename = fhs[0].Filename
			}
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Do(context.Background(), RequestDescriptor{
		Method: http.MethodPost,
		Path:   "/payments",
		Form: &Form{
			Fields: map[string]string{"note": "wire transfer"},
			Files:  []FormFile{{Field: "receipt", Filename: "receipt.pdf", Content: []byte("%PDF")}},
		},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Fatalf("Content-Type = %q, want multipart/form-data", contentType)
	}
	if strings.Contains(contentType, "application/json") {
		t.Fatal("JSON content type leaked into multipart request")
	}
	if field != "wire transfer" || filename != "receipt.pdf" {
		t.Fatalf("form not decoded: field=%q file=%q", field, filename)
	}
}

func TestRawBodySentVerbatim(t *testing.T) {
	var contentType string
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		got, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Do(context.Background(), RequestDescriptor{
		Method:      http.MethodPost,
		Path:        "/invoices/import",
		RawBody:     []byte("ref,amount\nINV-1,250.00\n"),
		ContentType: "text/csv",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if contentType != "text/csv" {
		t.Fatalf("Content-Type = %q, want text/csv", contentType)
	}
	if string(got) != "ref,amount\nINV-1,250.00\n" {
		t.Fatalf("body = %q", got)
	}
}

func TestJSONBodySetsContentType(t *testing.T) {
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Do(context.Background(), RequestDescriptor{
		Method: http.MethodPost,
		Path:   "/clients",
		JSON:   map[string]string{"name": "acme"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("Content-Type = %q", contentType)
	}
}
