package mcping

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestResolver_Resolve_srvHit(t *testing.T) {
	var srvName string
	r := Resolver{
		LookupSRV: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			srvName = "_" + service + "._" + proto + "." + name
			return "", []*net.SRV{{Target: "mc-backend.example.com.", Port: 25566}}, nil
		},
		LookupHost: func(ctx context.Context, host string) ([]string, error) {
			if host != "mc-backend.example.com" {
				t.Errorf("want SRV target to be looked up; got %q", host)
			}
			return []string{"192.0.2.1"}, nil
		},
	}

	addr, err := r.Resolve(context.Background(), "example.com", 25565)
	if err != nil {
		t.Fatal(err)
	}
	if srvName != "_minecraft._tcp.example.com" {
		t.Errorf("want SRV lookup for _minecraft._tcp.example.com; got %q", srvName)
	}
	if addr != "192.0.2.1:25565" {
		t.Errorf("want 192.0.2.1:25565; got %q", addr)
	}
}

func TestResolver_Resolve_srvMiss(t *testing.T) {
	r := Resolver{
		LookupSRV: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			return "", nil, errors.New("no such record")
		},
		LookupHost: func(ctx context.Context, host string) ([]string, error) {
			if host != "example.com" {
				t.Errorf("SRV miss should fall back to the original host; got %q", host)
			}
			return []string{"192.0.2.2", "192.0.2.3"}, nil
		},
	}

	addr, err := r.Resolve(context.Background(), "example.com", 25565)
	if err != nil {
		t.Fatal(err)
	}
	if addr != "192.0.2.2:25565" {
		t.Errorf("only the first resolved address should be used; got %q", addr)
	}
}

func TestResolver_Resolve_noAddrs(t *testing.T) {
	r := Resolver{
		LookupSRV: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			return "", nil, errors.New("no such record")
		},
		LookupHost: func(ctx context.Context, host string) ([]string, error) {
			return nil, nil
		},
	}

	_, err := r.Resolve(context.Background(), "nowhere.invalid", 25565)
	var dnsErr DNSError
	if !errors.As(err, &dnsErr) {
		t.Fatalf("want DNSError; got %v", err)
	}
	if dnsErr.Address != "nowhere.invalid" {
		t.Errorf("want address in error; got %q", dnsErr.Address)
	}
}
