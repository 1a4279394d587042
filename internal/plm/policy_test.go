package plm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPolicyIdempotent(t *testing.T) {
	repo := newFakeRepo()
	session := NewSession(repo, fakeFiles{})

	require.NoError(t, session.ApplyPolicy(context.Background(), DefaultPolicy()))
	require.NoError(t, session.ApplyPolicy(context.Background(), DefaultPolicy()))

	assert.Equal(t, 1, repo.policyCalls, "reapplying the same policy must be a no-op")
}

func TestApplyPolicyDifferentPolicyReapplies(t *testing.T) {
	repo := newFakeRepo()
	session := NewSession(repo, fakeFiles{})

	require.NoError(t, session.ApplyPolicy(context.Background(), DefaultPolicy()))
	require.NoError(t, session.ApplyPolicy(context.Background(), PropertyPolicy{
		"Item": {"item_id"},
	}))

	assert.Equal(t, 2, repo.policyCalls)
}

func TestApplyPolicyRejectedPropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.policyErr = errors.New("malformed policy schema")
	session := NewSession(repo, fakeFiles{})

	err := session.ApplyPolicy(context.Background(), DefaultPolicy())
	require.Error(t, err)

	// A rejected policy is never cached; the next apply tries again.
	repo.policyErr = nil
	require.NoError(t, session.ApplyPolicy(context.Background(), DefaultPolicy()))
	assert.Equal(t, 2, repo.policyCalls)
}

func TestPolicyFingerprintOrderIndependent(t *testing.T) {
	a := PropertyPolicy{
		"Item":    {"item_id", "object_name"},
		"Dataset": {"ref_list", "object_type"},
	}
	b := PropertyPolicy{
		"Dataset": {"object_type", "ref_list"},
		"Item":    {"object_name", "item_id"},
	}

	assert.Equal(t, a.fingerprint(), b.fingerprint())
}

func TestDefaultPolicyCoversPipelineTypes(t *testing.T) {
	policy := DefaultPolicy()

	for _, typ := range []string{"Item", "ItemRevision", "Dataset", "ImanFile"} {
		assert.Contains(t, policy, typ)
	}
	assert.Contains(t, policy["Dataset"], "ref_list")
	assert.Contains(t, policy["ImanFile"], "original_file_name")
}
