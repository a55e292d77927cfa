// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"strings"
	"testing"

	"github.com/stratastor/strata-csi/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    ObjectIDInfo
		wantErr bool
	}{
		{
			name: "type and internal id",
			id:   "a9k:0200000000",
			want: ObjectIDInfo{ArrayType: "a9k", InternalID: "0200000000"},
		},
		{
			name: "with system id",
			id:   "svc:sys-01:0200000000",
			want: ObjectIDInfo{ArrayType: "svc", SystemID: "sys-01", InternalID: "0200000000"},
		},
		{name: "single part", id: "0200000000", wantErr: true},
		{name: "too many parts", id: "svc:a:b:c", wantErr: true},
		{name: "empty internal id", id: "svc:", wantErr: true},
		{name: "empty array type", id: ":0200", wantErr: true},
		{name: "array type too long", id: "storwize:0200", wantErr: true},
		{name: "bad system id", id: "svc:-bad-:0200", wantErr: true},
		{name: "system id too long", id: "svc:" + strings.Repeat("a", 91) + ":0200", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObjectID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ControllerObjectID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.id, got.String())
		})
	}
}

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    NodeIDInfo
		wantErr bool
	}{
		{
			name: "iscsi only",
			id:   "node1;;;iqn.1994-05.com.redhat:node1",
			want: NodeIDInfo{Hostname: "node1"},
		},
		{
			name: "fc only",
			id:   "node1;;10000000c9934d9f:10000000c9934d9e",
			want: NodeIDInfo{Hostname: "node1"},
		},
		{name: "hostname only", id: "node1", wantErr: true},
		{name: "no initiators", id: "node1;;;", wantErr: true},
		{name: "empty hostname", id: ";;;iqn.x", wantErr: true},
		{name: "too many fields", id: "node1;a;b;c;d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNodeID(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ControllerValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Hostname, got.Hostname)
		})
	}

	info, err := ParseNodeID("node1;nqn.2014-08.org:host;aa:bb;iqn.x")
	require.NoError(t, err)
	assert.Equal(t, "nqn.2014-08.org:host", info.Initiators.NvmeNQN)
	assert.Equal(t, []string{"aa", "bb"}, info.Initiators.FCWWNs)
	assert.Equal(t, "iqn.x", info.Initiators.IscsiIQN)
}

func TestCredentialsFromSecrets(t *testing.T) {
	creds, err := credentialsFromSecrets(map[string]string{
		"username":           "admin",
		"password":           "secret",
		"management_address": "10.0.0.1, 10.0.0.2,",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, creds.Addresses)
	assert.Equal(t, "admin", creds.Username)

	for _, missing := range []string{"username", "password", "management_address"} {
		secrets := map[string]string{
			"username":           "admin",
			"password":           "secret",
			"management_address": "10.0.0.1",
		}
		delete(secrets, missing)
		_, err := credentialsFromSecrets(secrets)
		require.Error(t, err, missing)
		assert.True(t, errors.HasCode(err, errors.ControllerValidation))
		assert.Contains(t, err.Error(), missing)
	}

	_, err = credentialsFromSecrets(map[string]string{
		"username":           "admin",
		"password":           "secret",
		"management_address": " , ",
	})
	assert.Error(t, err)
}
