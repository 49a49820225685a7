package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"

	"github.com/defistate/oracle-registry-go/registry"
)

// parseAddress decodes a hex address from a path variable or body field.
func parseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.registry.Version()})
}

func (s *Server) handleOwner(w http.ResponseWriter, r *http.Request) {
	reg := s.registry.Registry()
	writeJSON(w, http.StatusOK, map[string]string{
		"owner":        reg.Owner().Hex(),
		"pendingOwner": reg.PendingOwner().Hex(),
	})
}

type deployerView struct {
	Deployer   common.Address `json:"deployer"`
	QuoteToken common.Address `json:"quoteToken"`
}

func (s *Server) handleListDeployers(w http.ResponseWriter, r *http.Request) {
	reg := s.registry.Registry()
	deployers := reg.Deployers()
	out := make([]deployerView, 0, len(deployers))
	for _, d := range deployers {
		quote, _ := reg.QuoteTokenForDeployer(d)
		out = append(out, deployerView{Deployer: d, QuoteToken: quote})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeployerFeeds(w http.ResponseWriter, r *http.Request) {
	deployer, ok := parseAddress(mux.Vars(r)["deployer"])
	if !ok {
		writeBadRequest(w, "invalid deployer address")
		return
	}
	writeJSON(w, http.StatusOK, s.registry.Registry().FeedsForDeployer(deployer))
}

func (s *Server) handlePendingFeeds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Registry().PendingFeeds())
}

func (s *Server) handleOrphanedFeeds(w http.ResponseWriter, r *http.Request) {
	orphans := s.registry.Registry().OrphanedFeeds()
	if orphans == nil {
		orphans = []registry.FeedRecord{}
	}
	writeJSON(w, http.StatusOK, orphans)
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	quote, ok := parseAddress(vars["quote"])
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	feed, ok := parseAddress(vars["feed"])
	if !ok {
		writeBadRequest(w, "invalid feed address")
		return
	}

	record, err := s.registry.Registry().ApprovedFeed(quote, feed)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handlePendingBaseTokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Registry().PendingBaseTokens())
}

type suggestFeedRequest struct {
	Caller     string   `json:"caller"`
	QuoteToken string   `json:"quoteToken"`
	Feed       string   `json:"feed"`
	BaseTokens []string `json:"baseTokens"`
}

func (s *Server) handleSuggestFeed(w http.ResponseWriter, r *http.Request) {
	var req suggestFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		writeBadRequest(w, "invalid caller address")
		return
	}
	quote, ok := parseAddress(req.QuoteToken)
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	feed, ok := parseAddress(req.Feed)
	if !ok {
		writeBadRequest(w, "invalid feed address")
		return
	}
	baseTokens := make([]common.Address, 0, len(req.BaseTokens))
	for _, t := range req.BaseTokens {
		token, ok := parseAddress(t)
		if !ok {
			writeBadRequest(w, "invalid base token address")
			return
		}
		baseTokens = append(baseTokens, token)
	}

	index, err := s.registry.Registry().SuggestFeed(r.Context(), caller, quote, feed, baseTokens)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": index})
}

type suggestBaseTokenRequest struct {
	Caller     string `json:"caller"`
	QuoteToken string `json:"quoteToken"`
	Feed       string `json:"feed"`
	Token      string `json:"token"`
}

func (s *Server) handleSuggestBaseToken(w http.ResponseWriter, r *http.Request) {
	var req suggestBaseTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	caller, ok := parseAddress(req.Caller)
	if !ok {
		writeBadRequest(w, "invalid caller address")
		return
	}
	quote, ok := parseAddress(req.QuoteToken)
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	feed, ok := parseAddress(req.Feed)
	if !ok {
		writeBadRequest(w, "invalid feed address")
		return
	}
	token, ok := parseAddress(req.Token)
	if !ok {
		writeBadRequest(w, "invalid token address")
		return
	}

	index, err := s.registry.Registry().SuggestBaseToken(r.Context(), caller, quote, feed, token)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": index})
}

type addDeployerRequest struct {
	QuoteToken string `json:"quoteToken"`
	Deployer   string `json:"deployer"`
}

func (s *Server) handleAddDeployer(w http.ResponseWriter, r *http.Request) {
	var req addDeployerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	quote, ok := parseAddress(req.QuoteToken)
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	deployer, ok := parseAddress(req.Deployer)
	if !ok {
		writeBadRequest(w, "invalid deployer address")
		return
	}

	if err := s.registry.Registry().AddDeployer(r.Context(), s.owner, quote, deployer); err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deployerView{Deployer: deployer, QuoteToken: quote})
}

func (s *Server) handleRemoveDeployer(w http.ResponseWriter, r *http.Request) {
	deployer, ok := parseAddress(mux.Vars(r)["deployer"])
	if !ok {
		writeBadRequest(w, "invalid deployer address")
		return
	}
	if err := s.registry.Registry().RemoveDeployer(r.Context(), s.owner, deployer); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type callDeployerRequest struct {
	Data string `json:"data"`
}

func (s *Server) handleCallDeployer(w http.ResponseWriter, r *http.Request) {
	deployer, ok := parseAddress(mux.Vars(r)["deployer"])
	if !ok {
		writeBadRequest(w, "invalid deployer address")
		return
	}
	var req callDeployerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	data, err := hexutil.Decode(req.Data)
	if err != nil {
		writeBadRequest(w, "invalid calldata hex")
		return
	}

	result, err := s.registry.Registry().CallDeployer(r.Context(), s.owner, deployer, data)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": hexutil.Encode(result)})
}

func (s *Server) handleApproveFeed(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeBadRequest(w, "invalid pending index")
		return
	}
	if err := s.registry.Registry().ApproveFeed(r.Context(), s.owner, index); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFeed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	quote, ok := parseAddress(vars["quote"])
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	feed, ok := parseAddress(vars["feed"])
	if !ok {
		writeBadRequest(w, "invalid feed address")
		return
	}
	if err := s.registry.Registry().RemoveFeed(r.Context(), s.owner, quote, feed); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type associateTokenRequest struct {
	QuoteToken string `json:"quoteToken"`
	Feed       string `json:"feed"`
	Token      string `json:"token"`
}

func (s *Server) handleAssociateToken(w http.ResponseWriter, r *http.Request) {
	var req associateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	quote, ok := parseAddress(req.QuoteToken)
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	feed, ok := parseAddress(req.Feed)
	if !ok {
		writeBadRequest(w, "invalid feed address")
		return
	}
	token, ok := parseAddress(req.Token)
	if !ok {
		writeBadRequest(w, "invalid token address")
		return
	}

	if err := s.registry.Registry().AssociateToken(r.Context(), s.owner, quote, feed, token); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApproveBaseToken(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeBadRequest(w, "invalid pending index")
		return
	}
	if err := s.registry.Registry().ApproveBaseToken(r.Context(), s.owner, index); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveToken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	quote, ok := parseAddress(vars["quote"])
	if !ok {
		writeBadRequest(w, "invalid quote token address")
		return
	}
	feed, ok := parseAddress(vars["feed"])
	if !ok {
		writeBadRequest(w, "invalid feed address")
		return
	}
	token, ok := parseAddress(vars["token"])
	if !ok {
		writeBadRequest(w, "invalid token address")
		return
	}
	if err := s.registry.Registry().RemoveToken(r.Context(), s.owner, quote, feed, token); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
