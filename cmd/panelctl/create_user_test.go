package main

import "testing"

func TestCreateUserOptsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    createUserOpts
		wantErr bool
		tenant  bool
	}{
		{"master without tenant", createUserOpts{email: "a@b.c", password: "secret1", role: "master"}, false, false},
		{"operator needs tenant", createUserOpts{email: "a@b.c", password: "secret1", role: "operator"}, true, false},
		{"operator with tenant", createUserOpts{email: "a@b.c", password: "secret1", role: "operator", tenant: "6f1c2d3e-0000-4000-8000-000000000001"}, false, true},
		{"bad tenant", createUserOpts{email: "a@b.c", password: "secret1", role: "admin", tenant: "nope"}, true, false},
		{"unknown role", createUserOpts{email: "a@b.c", password: "secret1", role: "root"}, true, false},
		{"short password", createUserOpts{email: "a@b.c", password: "123", role: "master"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.opts.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (id != nil) != tt.tenant {
				t.Fatalf("tenant = %v", id)
			}
		})
	}
}
