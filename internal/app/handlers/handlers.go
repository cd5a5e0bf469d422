package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vancho-go/ipreverser/internal/app/ipaddr"
	"github.com/vancho-go/ipreverser/internal/app/models"
	"github.com/vancho-go/ipreverser/internal/app/storage"
)

const readyTimeout = 3 * time.Second

type RecordCreator interface {
	CreateRecord(ctx context.Context, address, reversed string) (models.AddressRecord, error)
}

type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]models.AddressRecord, error)
}

type HistoryCleaner interface {
	ClearHistory(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type ReversalObserver interface {
	ObserveReversal(address string)
}

// resolveAndRecord reverses an already normalized address and stores exactly
// one record for it.
func resolveAndRecord(ctx context.Context, creator RecordCreator, observer ReversalObserver, address string) (models.APIReverseIPResponse, error) {
	reversed := ipaddr.Reverse(address)
	if observer != nil {
		observer.ObserveReversal(address)
	}

	if _, err := creator.CreateRecord(ctx, address, reversed); err != nil {
		return models.APIReverseIPResponse{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return models.APIReverseIPResponse{IP: address, ReversedIP: reversed}, nil
}

// ReverseIPFromRequest never rejects a request: with no address anywhere it
// stores and returns an empty pair.
func ReverseIPFromRequest(creator RecordCreator, observer ReversalObserver, sources []AddressSource) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		address := ipaddr.Normalize(resolveRawAddress(req, sources))

		resp, err := resolveAndRecord(req.Context(), creator, observer, address)
		if err != nil {
			writeError(res, req, fmt.Errorf("error in GET %s: %w", req.URL.Path, err), serverErrorMessage)
			return
		}
		writeJSON(res, http.StatusOK, resp)
	}
}

func ReverseIPFromBody(creator RecordCreator, observer ReversalObserver) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		var body models.APIReverseIPRequest

		decoder := json.NewDecoder(req.Body)
		if err := decoder.Decode(&body); err != nil {
			slog.DebugContext(req.Context(), "invalid request body", slog.Any("error", err))
			writeError(res, req, ErrMissingInput, "")
			return
		}

		address := ipaddr.Normalize(body.IP)
		if address == "" {
			writeError(res, req, ErrMissingInput, "")
			return
		}

		resp, err := resolveAndRecord(req.Context(), creator, observer, address)
		if err != nil {
			writeError(res, req, fmt.Errorf("error in POST %s: %w", req.URL.Path, err), serverErrorMessage)
			return
		}
		writeJSON(res, http.StatusOK, resp)
	}
}

func GetHistory(lister HistoryLister) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		records, err := lister.ListRecent(req.Context(), storage.HistoryLimit)
		if err != nil {
			writeError(res, req, fmt.Errorf("error fetching history: %w: %w", ErrStoreFailure, err), databaseMessage)
			return
		}
		if records == nil {
			records = []models.AddressRecord{}
		}
		writeJSON(res, http.StatusOK, records)
	}
}

func ClearHistory(cleaner HistoryCleaner) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if err := cleaner.ClearHistory(req.Context()); err != nil {
			writeError(res, req, fmt.Errorf("error clearing history: %w: %w", ErrStoreFailure, err), databaseMessage)
			return
		}
		writeJSON(res, http.StatusOK, models.APIMessageResponse{Message: "History cleared"})
	}
}

func Health() http.HandlerFunc {
	return func(res http.ResponseWriter, _ *http.Request) {
		res.Header().Set("Content-Type", "text/plain; charset=utf-8")
		res.WriteHeader(http.StatusOK)
		_, _ = res.Write([]byte("ok"))
	}
}

func Ready(pinger Pinger) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), readyTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "store not ready", slog.Any("error", err))
			writeJSON(res, http.StatusServiceUnavailable, models.APIReadyResponse{Status: "down"})
			return
		}
		writeJSON(res, http.StatusOK, models.APIReadyResponse{Status: "ok"})
	}
}
