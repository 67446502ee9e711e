package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"stockgenius/pkg/stockgenius"
)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, healthResponse{
		Status:  "ok",
		Version: h.version,
		Market:  h.core.MarketName(),
		LLM:     h.core.LLMName(),
		Journal: h.core.JournalEnabled(),
	})
}

func (h *handler) riskTiers(w http.ResponseWriter, r *http.Request) {
	tiers := make([]riskTierInfo, 0, len(stockgenius.RiskTiers))
	for _, tier := range stockgenius.RiskTiers {
		tiers = append(tiers, riskTierInfo{
			Tier:           tier,
			BaseRisk:       tier.BaseRisk(),
			DefaultTickers: tier.DefaultTickers(),
		})
	}
	writeSuccess(w, tiers)
}

func (h *handler) selectStocks(w http.ResponseWriter, r *http.Request) {
	var payload selectPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	result, err := h.core.Recommend(r.Context(), payload.RiskTier, payload.Strategy, payload.CustomTickers)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeWithFailureNote(w, result, result.Records)
}

func (h *handler) recommendationAdvice(w http.ResponseWriter, r *http.Request) {
	var payload advicePayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	result, err := h.core.RecommendStocks(r.Context(), stockgenius.AdviceRequest{
		RiskTier: payload.RiskTier,
		Duration: payload.Duration,
		Strategy: payload.Strategy,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) simulate(w http.ResponseWriter, r *http.Request) {
	var payload simulationPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	result, err := h.core.Simulate(stockgenius.SimulationRequest{
		Amount:       stockgenius.NewAmount(payload.Amount),
		PeriodMonths: payload.PeriodMonths,
		RiskTier:     payload.RiskTier,
		Strategy:     payload.Strategy,
		Seed:         payload.Seed,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) simulationNarrative(w http.ResponseWriter, r *http.Request) {
	var payload narrationPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	result, err := h.core.NarrateSimulation(r.Context(), stockgenius.NarrationRequest{
		Amount:       stockgenius.NewAmount(payload.Amount),
		PeriodMonths: payload.PeriodMonths,
		RiskTier:     payload.RiskTier,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) compare(w http.ResponseWriter, r *http.Request) {
	var payload comparisonPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	table, err := h.core.Compare(r.Context(), payload.Target, payload.Competitors)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeWithFailureNote(w, comparisonResponse{Comparison: table, Table: table.Format()}, table.Ordered())
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "json"
	}
	switch format {
	case "json", "markdown", "html", "pdf":
	default:
		writeInvalidInput(w, r, fmt.Errorf("unsupported report format %q", format))
		return
	}

	var payload reportPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	doc, err := h.core.BuildReport(r.Context(), stockgenius.ReportRequest{
		Target:      payload.Target,
		Competitors: payload.Competitors,
		RiskTier:    payload.RiskTier,
		Strategy:    payload.Strategy,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}

	switch format {
	case "markdown":
		writeBody(w, "text/markdown; charset=utf-8", "", []byte(doc.Markdown))
	case "html":
		body, err := stockgenius.RenderReportHTML(doc)
		if err != nil {
			writeErrorResponse(w, r, err)
			return
		}
		writeBody(w, "text/html; charset=utf-8", "", body)
	case "pdf":
		body, err := stockgenius.RenderReportPDF(doc)
		if err != nil {
			writeErrorResponse(w, r, err)
			return
		}
		writeBody(w, "application/pdf", reportFilename(doc.Target, "pdf"), body)
	default:
		writeSuccess(w, doc)
	}
}

func (h *handler) reportNarrative(w http.ResponseWriter, r *http.Request) {
	var payload advicePayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	result, err := h.core.WriteReport(r.Context(), stockgenius.AdviceRequest{
		RiskTier: payload.RiskTier,
		Duration: payload.Duration,
		Strategy: payload.Strategy,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, result)
}

func (h *handler) adviceHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseIntDefault(query.Get("limit"), 0)
	if err != nil {
		writeInvalidInput(w, r, fmt.Errorf("limit must be an integer"))
		return
	}
	kind := stockgenius.AdviceKind(strings.ToLower(strings.TrimSpace(query.Get("kind"))))
	records, err := h.core.ListAdviceHistory(r.Context(), kind, limit)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeSuccess(w, records)
}

// decodeAndValidate decodes the JSON body into dst and checks its validation tags. On failure
// it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeInvalidInput(w, r, err)
		return false
	}
	if err := validatePayload(dst); err != nil {
		writeInvalidInput(w, r, err)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// writeWithFailureNote adds a message naming the tickers whose fundamentals were unavailable.
func writeWithFailureNote(w http.ResponseWriter, data any, records []stockgenius.FundamentalsRecord) {
	var failed []string
	for _, rec := range records {
		if !rec.Available() {
			failed = append(failed, rec.Ticker)
		}
	}
	if len(failed) == 0 {
		writeSuccess(w, data)
		return
	}
	writeSuccessWithMessage(w, "fundamentals unavailable for "+strings.Join(failed, ", "), data)
}

func writeBody(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func reportFilename(target, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, target)
	return "report-" + safe + "." + ext
}

func parseIntDefault(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
