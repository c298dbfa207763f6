// Package server exposes the TVM solver, amortization schedules and batch
// calculations over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/tvm-solver/internal/calculation"
	"github.com/iwvelando/tvm-solver/internal/config"
	"github.com/iwvelando/tvm-solver/pkg/constants"
	"github.com/iwvelando/tvm-solver/pkg/loans"
	"github.com/iwvelando/tvm-solver/pkg/mathutil"
	"github.com/iwvelando/tvm-solver/pkg/output"
	"github.com/iwvelando/tvm-solver/pkg/tvm"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	solver        config.SolverConfig
}

type loggerKey struct{}

// NewHandler constructs the HTTP handler that serves the calculation API.
// solver supplies the rate iteration defaults for requests that do not
// override them.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, solver config.SolverConfig) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	solver.Normalize()
	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion, solver: solver}

	mux := http.NewServeMux()

	// Single TVM problem
	mux.HandleFunc("/api/tvm/solve", h.handleSolve)

	// Loan amortization schedule
	mux.HandleFunc("/api/amortization", h.handleAmortization)

	// Batch calculation (file upload)
	mux.HandleFunc("/api/calculate", h.handleCalculate)

	// Batch calculation for editor-driven updates
	mux.HandleFunc("/api/editor/calculate", h.handleCalculateEditor)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	mux.HandleFunc("/api/version", h.handleVersion)

	return h.withRequestID(mux)
}

// withRequestID tags every request with an ID, echoes it in the response
// headers and attaches a logger carrying it to the request context.
func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(constants.RequestIDHeader))
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(constants.RequestIDHeader, requestID)

		logger := h.logger.With(zap.String("requestId", requestID))
		ctx := context.WithValue(r.Context(), loggerKey{}, logger)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug("request handled",
			zap.String("op", "server.withRequestID"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (h *handler) loggerFor(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return h.logger
}

type solveRequest struct {
	Solve         string   `json:"solve,omitempty"`
	PV            *float64 `json:"pv,omitempty"`
	FV            *float64 `json:"fv,omitempty"`
	PMT           *float64 `json:"pmt,omitempty"`
	Rate          *float64 `json:"rate,omitempty"`
	NPer          *float64 `json:"nper,omitempty"`
	Type          int      `json:"type"`
	Guess         float64  `json:"guess,omitempty"`
	Tolerance     float64  `json:"tolerance,omitempty"`
	MaxIterations int      `json:"maxIterations,omitempty"`
}

type solveResponse struct {
	Field      string   `json:"field"`
	Value      *float64 `json:"value"`
	Display    string   `json:"display"`
	Iterations int      `json:"iterations,omitempty"`
	Status     string   `json:"status,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req solveRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	problem := config.Problem{
		Name:  "request",
		Solve: req.Solve,
		PV:    req.PV,
		FV:    req.FV,
		PMT:   req.PMT,
		Rate:  req.Rate,
		NPer:  req.NPer,
		Type:  req.Type,
		Guess: req.Guess,
	}
	target, err := problem.Target()
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	solver := h.solver
	if req.Tolerance > 0 {
		solver.Tolerance = req.Tolerance
	}
	if req.MaxIterations > 0 {
		solver.MaxIterations = req.MaxIterations
	}
	if err := solver.Validate(); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	solution, err := tvm.Solve(problem.ToInputs(), target, problem.RateOptions(solver))
	if errors.Is(err, tvm.ErrInvalidInputs) {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	response := solveResponse{
		Field:   solution.Field.String(),
		Value:   finite(solution.Value),
		Display: output.Value(solution.Field.String(), solution.Value),
	}
	if solution.Rate != nil {
		response.Iterations = solution.Rate.Iterations
		response.Status = solution.Rate.Status.String()
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
		response.Error = err.Error()
		h.loggerFor(r).Warn("TVM problem has no clean solution",
			zap.String("op", op),
			zap.String("field", response.Field),
			zap.Error(err),
		)
	}

	h.writeJSON(w, r, status, response)
}

type amortizationRequest struct {
	LoanAmount float64 `json:"loanAmount"`
	AnnualRate float64 `json:"annualRate"`
	TermMonths int     `json:"termMonths"`
	StartDate  string  `json:"startDate,omitempty"`
}

func (h *handler) handleAmortization(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAmortization"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var req amortizationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	generator := loans.NewAmortizationScheduleGenerator(h.loggerFor(r))
	schedule, err := generator.Generate(loans.Loan{
		Name:       "request",
		Amount:     req.LoanAmount,
		AnnualRate: req.AnnualRate,
		TermMonths: req.TermMonths,
		StartDate:  req.StartDate,
	})
	if errors.Is(err, loans.ErrScheduleOverflow) {
		h.respondErrorWithOp(w, r, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, r, http.StatusOK, schedule)
}

type calculationResponse struct {
	Results    []resultPayload        `json:"results"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type resultPayload struct {
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Field      string          `json:"field,omitempty"`
	Value      *float64        `json:"value"`
	Display    string          `json:"display,omitempty"`
	Iterations int             `json:"iterations,omitempty"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Schedule   *loans.Schedule `json:"schedule,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.loggerFor(r).Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	h.runCalculation(w, r, configBytes, configMap, start, op)
}

func (h *handler) handleCalculateEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculateEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.runCalculation(w, r, configBytes, configMap, start, op)
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// configKeyOrder lists the top-level sections in the order they are written
// back out; unknown keys follow alphabetically.
var configKeyOrder = []string{"logging", "output", "solver", "problems", "loans"}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range configKeyOrder {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runCalculation(w http.ResponseWriter, r *http.Request, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	logger := h.loggerFor(r)

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	results, err := calculation.Run(logger, *cfg)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to run calculation: %v", err), op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := calculationResponse{
		Results:    buildResults(results),
		CSV:        csvBuf.String(),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	logger.Info("calculation computed",
		zap.String("op", op),
		zap.Int("problems", len(cfg.Problems)),
		zap.Int("loans", len(cfg.Loans)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, r, http.StatusOK, response)
}

func buildResults(results []calculation.Result) []resultPayload {
	payloads := make([]resultPayload, 0, len(results))
	for _, result := range results {
		payload := resultPayload{
			Name:       result.Name,
			Kind:       result.Kind,
			Field:      result.Field,
			Iterations: result.Iterations,
			Status:     result.Status,
			Error:      result.Error,
			Schedule:   result.Schedule,
		}
		if result.Field != "" {
			payload.Value = finite(result.Value)
			payload.Display = output.Value(result.Field, result.Value)
		}
		payloads = append(payloads, payload)
	}
	return payloads
}

// finite returns nil for values JSON cannot represent.
func finite(value float64) *float64 {
	if !mathutil.IsFinite(value) {
		return nil
	}
	return &value
}

func decodeJSON(body io.Reader, dest interface{}) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.loggerFor(r).Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before committing the status so an encoding
// failure still reaches the client as a 500.
func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.loggerFor(r).Error("failed to encode JSON response", zap.Int("status", status), zap.Error(err))
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]string{"error": "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.loggerFor(r).Error("failed to write JSON response", zap.Error(err))
	}
}
