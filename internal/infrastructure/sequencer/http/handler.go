package httpsequencer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	sequencer ports.SequencerClient
}

// NewHandler exposes the given sequencer over the json http API spoken by
// the client of this package.
func NewHandler(sequencer ports.SequencerClient) http.Handler {
	h := &handler{sequencer}

	mux := http.NewServeMux()
	mux.HandleFunc(submitTxPath, h.submitTransaction)
	mux.HandleFunc(blockPath, h.getBlock)
	mux.HandleFunc(accountPath, h.getAccount)
	mux.HandleFunc(proofPath, h.getProof)
	return mux
}

func (h *handler) submitTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	var req submitTxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := decodeTransaction(req.Tx)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.sequencer.SubmitTransaction(r.Context(), *tx)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, submitTxResponse{
		TxHash:   res.TxHash.String(),
		Accepted: res.Accepted,
		Reason:   res.Reason,
	})
}

func (h *handler) getBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	if r.URL.Path == lastBlockPath {
		blockId, err := h.sequencer.GetLastBlockId(r.Context())
		if err != nil {
			writeError(w, statusFromError(err), err)
			return
		}
		writeJSON(w, lastBlockResponse{BlockId: blockId})
		return
	}

	blockId, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, blockPath), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	block, err := h.sequencer.GetBlock(r.Context(), blockId)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	resp, err := newBlockResponse(block)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, resp)
}

func (h *handler) getAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	id, err := domain.ParseAccountId(strings.TrimPrefix(r.URL.Path, accountPath))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, err := h.sequencer.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, newAccountResponse(state))
}

func (h *handler) getProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	commitment, err := domain.ParseCommitment(strings.TrimPrefix(r.URL.Path, proofPath))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	proof, err := h.sequencer.GetProofForCommitment(r.Context(), commitment)
	if err != nil {
		writeError(w, statusFromError(err), err)
		return
	}
	writeJSON(w, newProofResponse(proof))
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, ports.ErrBlockNotFound),
		errors.Is(err, ports.ErrRemoteAccountNotFound),
		errors.Is(err, ports.ErrCommitmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrNetwork):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("sequencer api: failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
