package controllers

import (
	"eigenkey/internal/lifecycle"
	"eigenkey/internal/models"
	"eigenkey/internal/providers"
	"eigenkey/internal/services"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 64 << 10 // 64 KB

type ApiController struct {
	logger  providers.Logger
	service services.AccessServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.AccessServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func queryKey(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("key"))
}

// Access runs the full gate for one page render.
func (ac *ApiController) Access(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.AccessRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		ac.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "Rejected access body from %s: %s", clientIP(r), err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.Key) == "" {
		http.Error(w, "Bad Request: key is required", http.StatusBadRequest)
		return
	}

	client := clientInfo(w, r, payload.Page)
	decision := ac.service.Authorize(r.Context(), payload.Key, client)

	status := http.StatusOK
	if !decision.Granted {
		status = http.StatusForbidden
	}
	ac.logger.Infof(providers.GetLogTypeByRequestType(r.Method), "access %s key=%s page=%s", decision.Status, decision.Validation.KeyMask, client.Page)
	writeJSON(w, status, decision)
}

// Validate reports the key's lifecycle state without logging usage.
func (ac *ApiController) Validate(w http.ResponseWriter, r *http.Request) {
	key := queryKey(r)
	if key == "" {
		http.Error(w, "Bad Request: key is required", http.StatusBadRequest)
		return
	}
	result := ac.service.Inspect(r.Context(), key).Validation
	ac.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "validate key=%s valid=%t", result.KeyMask, result.Valid)
	writeJSON(w, http.StatusOK, result)
}

func (ac *ApiController) Anomaly(w http.ResponseWriter, r *http.Request) {
	key := queryKey(r)
	if key == "" {
		http.Error(w, "Bad Request: key is required", http.StatusBadRequest)
		return
	}
	mask := lifecycle.MaskKey(lifecycle.NormalizeKey(key))
	ac.serveFromCacheOrCompute(w, services.AnomalyCacheKey(mask), func() (any, error) {
		return ac.service.CheckAnomaly(key), nil
	})
}
