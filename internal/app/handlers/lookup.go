package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vancho-go/ipreverser/internal/app/dnslookuper"
	"github.com/vancho-go/ipreverser/internal/app/ipaddr"
	"github.com/vancho-go/ipreverser/internal/app/models"
	"golang.org/x/sync/errgroup"
)

type PTRLookuper interface {
	LookupPTR(ctx context.Context, ip string) ([]dnslookuper.ResolverResponse, error)
}

type CountryLocator interface {
	CountryISOCode(ip string) (string, error)
}

// Lookup describes an address without recording it. Resolver and locator
// failures are logged and leave the matching fields empty. Either dependency
// may be nil.
func Lookup(lookuper PTRLookuper, locator CountryLocator, sources []AddressSource) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		address := ipaddr.Normalize(resolveRawAddress(req, sources))
		resp := models.APILookupResponse{
			IP:         address,
			ReversedIP: ipaddr.Reverse(address),
			Arpa:       dnslookuper.ArpaName(address),
			Names:      []string{},
		}

		if resp.Arpa == "" {
			writeJSON(res, http.StatusOK, resp)
			return
		}

		var g errgroup.Group
		if lookuper != nil {
			g.Go(func() error {
				records, err := lookuper.LookupPTR(req.Context(), address)
				if err != nil {
					slog.WarnContext(req.Context(), "ptr lookup failed", slog.String("ip", address), slog.Any("error", err))
					return nil
				}
				for _, record := range records {
					resp.Names = append(resp.Names, record.Name)
				}
				return nil
			})
		}
		if locator != nil {
			g.Go(func() error {
				country, err := locator.CountryISOCode(address)
				if err != nil {
					slog.WarnContext(req.Context(), "country lookup failed", slog.String("ip", address), slog.Any("error", err))
					return nil
				}
				resp.Country = country
				return nil
			})
		}
		_ = g.Wait()

		writeJSON(res, http.StatusOK, resp)
	}
}
