package memory

import (
	"testing"

	"github.com/code-payments/stake-server/pkg/data/stake/tests"
)

func TestStakeMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
