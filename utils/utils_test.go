package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("s3cret", "user-7", "sam", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken("s3cret", tok)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "user-7" || claims.Username != "sam" {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := ParseToken("", tok); err == nil {
		t.Fatal("empty secret must not verify tokens")
	}
	if _, err := ParseToken("other", tok); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}

func TestParseTokenRejectsUnsignedAndSubjectless(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-7"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken("s3cret", unsigned); err == nil {
		t.Fatal("alg=none token accepted")
	}

	noSubject, _ := GenerateToken("s3cret", "", "sam", time.Hour)
	if _, err := ParseToken("s3cret", noSubject); err == nil {
		t.Fatal("token without subject accepted")
	}
}

func TestStartPeriodicFlush(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPeriodicFlush(ctx, 10*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return errors.New("still offline")
	})

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("flush called %d times", calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerShutdownRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(ln.Addr().String(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), DefaultReadTimeout, DefaultWriteTimeout)

	var flushed atomic.Bool
	srv.OnShutdown(func(context.Context) error {
		flushed.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if !flushed.Load() {
		t.Fatal("shutdown hook not run")
	}
}

func TestServerShutdownReportsHookError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(ln.Addr().String(), http.NotFoundHandler(), DefaultReadTimeout, DefaultWriteTimeout)
	boom := errors.New("flush failed")
	srv.OnShutdown(func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.Serve(ctx, ln); !errors.Is(err, boom) {
		t.Fatalf("Serve() err = %v, want hook error", err)
	}
}
