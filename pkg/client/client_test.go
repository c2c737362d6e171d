package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOwnerCarsDecodesEnvelopeAndSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/owner/cars" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": []map[string]interface{}{
				{"_id": "car-1", "owner": "owner-a", "brand": "BYD", "isAvailable": true},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	cars, err := c.OwnerCars(context.Background())
	if err != nil {
		t.Fatalf("OwnerCars: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if len(cars) != 1 || cars[0].ID != "car-1" || !cars[0].IsAvailable {
		t.Fatalf("unexpected cars %#v", cars)
	}
}

func TestFailureEnvelopeSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "car not found",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	err := c.ToggleCar(context.Background(), "no-such-car")
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "car not found" {
		t.Fatalf("unexpected APIError %#v", apiErr)
	}
}

func TestEmptyOwnerCarsDecodesToEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": []interface{}{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	cars, err := c.OwnerCars(context.Background())
	if err != nil {
		t.Fatalf("OwnerCars: %v", err)
	}
	if cars == nil || len(cars) != 0 {
		t.Fatalf("expected non-nil empty slice, got %#v", cars)
	}
}

func TestLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" {
			t.Errorf("unexpected login body %#v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": map[string]interface{}{"token": "fresh-token", "expires_at": 1700000000},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	res, err := c.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "fresh-token" || c.token != "fresh-token" {
		t.Fatalf("expected token stored on client, got %#v / %q", res, c.token)
	}
}
