package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancho-go/ipreverser/internal/app/dnslookuper"
	"github.com/vancho-go/ipreverser/internal/app/models"
)

type ptrLookuperMock struct {
	names []string
	err   error
	calls int
}

func (m *ptrLookuperMock) LookupPTR(_ context.Context, _ string) ([]dnslookuper.ResolverResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	result := make([]dnslookuper.ResolverResponse, 0, len(m.names))
	for _, name := range m.names {
		result = append(result, dnslookuper.ResolverResponse{Name: name, ExpiresAt: time.Now().Add(time.Minute)})
	}
	return result, nil
}

type countryLocatorMock struct {
	country string
	err     error
}

func (m countryLocatorMock) CountryISOCode(string) (string, error) {
	return m.country, m.err
}

func TestLookup(t *testing.T) {
	t.Parallel()

	lookuper := &ptrLookuperMock{names: []string{"dns.google."}}
	h := Lookup(lookuper, countryLocatorMock{country: "US"}, DefaultSources)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/lookup?ip=8.8.4.4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.APILookupResponse{
		IP:         "8.8.4.4",
		ReversedIP: "4.4.8.8",
		Arpa:       "4.4.8.8.in-addr.arpa.",
		Names:      []string{"dns.google."},
		Country:    "US",
	}, decodeBody[models.APILookupResponse](t, rec))
}

func TestLookup_FailuresLeaveFieldsEmpty(t *testing.T) {
	t.Parallel()

	h := Lookup(
		&ptrLookuperMock{err: errors.New("i/o timeout")},
		countryLocatorMock{err: errors.New("corrupt db")},
		DefaultSources,
	)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/lookup?ip=2001:db8::1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.APILookupResponse](t, rec)
	assert.Equal(t, "1:db8:2001", resp.ReversedIP)
	assert.Equal(t, []string{}, resp.Names)
	assert.Empty(t, resp.Country)
}

func TestLookup_NotAnAddressSkipsResolvers(t *testing.T) {
	t.Parallel()

	lookuper := &ptrLookuperMock{names: []string{"never"}}
	h := Lookup(lookuper, nil, DefaultSources)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/lookup?ip=localhost", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.APILookupResponse](t, rec)
	assert.Equal(t, "tsohlacol", resp.ReversedIP)
	assert.Empty(t, resp.Arpa)
	assert.Empty(t, resp.Names)
	assert.Zero(t, lookuper.calls)
}

func TestLookup_NilDependencies(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/lookup", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	rec := httptest.NewRecorder()

	Lookup(nil, nil, DefaultSources)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[models.APILookupResponse](t, rec)
	assert.Equal(t, "10.1.2.3", resp.IP)
	assert.Equal(t, "3.2.1.10.in-addr.arpa.", resp.Arpa)
	assert.Empty(t, resp.Names)
}
