package registry

import (
	"net/http/httptest"
	"testing"

	"github.com/dropforge-labs/dropforge-sdk-go/pkg/ledger/ledgertest"
)

func newLedgerServer(t *testing.T, fake *ledgertest.Ledger) *httptest.Server {
	t.Helper()
	return httptest.NewServer(fake.Handler())
}
