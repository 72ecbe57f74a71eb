package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flav-dev/flav/internal/accounts"
	"github.com/flav-dev/flav/internal/groups"
	"github.com/flav-dev/flav/internal/model"
)

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	flat := s.groups.Groups()
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": flat,
		"tree":   groups.BuildTree(flat),
	})
}

type groupRequest struct {
	Name     *string        `json:"name"`
	ParentID optionalString `json:"parentId"`
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decode(w, r, &req) {
		return
	}
	var name string
	if req.Name != nil {
		name = *req.Name
	}
	g, err := s.groups.CreateGroup(name, req.ParentID.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.chartChanged(r, "create_group", g.ID, "name="+g.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"group": g})
}

func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	var req groupRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := s.groups.UpdateGroup(groupID, groups.GroupUpdate{
		Name:     req.Name,
		ParentID: req.ParentID.ptr(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.chartChanged(r, "update_group", g.ID, fmt.Sprintf("name=%s parent=%s", g.Name, g.ParentID))
	writeJSON(w, http.StatusOK, map[string]any{"group": g})
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	deleted := s.groups.DeleteGroup(groupID)
	if deleted {
		s.chartChanged(r, "delete_group", groupID, "")
	}
	writeDeleted(w, deleted, "group", groupID)
}

func (s *Server) linkAccount(w http.ResponseWriter, r *http.Request) {
	groupID, accountID := chi.URLParam(r, "id"), chi.URLParam(r, "accountId")
	if !s.groups.AddAccountToGroup(accountID, groupID) {
		s.writeError(w, r, model.NotFound("group or account", groupID+"/"+accountID))
		return
	}
	s.chartChanged(r, "add_account_to_group", accountID, "group="+groupID)
	g, _ := s.groups.Group(groupID)
	writeJSON(w, http.StatusOK, map[string]any{"group": g})
}

func (s *Server) unlinkAccount(w http.ResponseWriter, r *http.Request) {
	groupID, accountID := chi.URLParam(r, "id"), chi.URLParam(r, "accountId")
	if !s.groups.RemoveAccountFromGroup(accountID, groupID) {
		s.writeError(w, r, model.NotFound("group or account", groupID+"/"+accountID))
		return
	}
	s.chartChanged(r, "remove_account_from_group", accountID, "group="+groupID)
	g, _ := s.groups.Group(groupID)
	writeJSON(w, http.StatusOK, map[string]any{"group": g})
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("groupId")
	if groupID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"accounts": s.groups.Accounts()})
		return
	}
	accts := s.groups.AccountsByGroup(groupID)
	if accts == nil {
		s.writeError(w, r, model.NotFound("group", groupID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accts})
}

type accountRequest struct {
	Code     *int     `json:"code"`
	Name     *string  `json:"name"`
	GroupIDs []string `json:"groupIds"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		code int
		name string
	)
	if req.Code != nil {
		code = *req.Code
	}
	if req.Name != nil {
		name = *req.Name
	}
	a, err := s.groups.CreateAccount(code, name, req.GroupIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.chartChanged(r, "create_account", a.ID, fmt.Sprintf("code=%d groups=%s", a.Code, strings.Join(a.GroupIDs, ";")))
	writeJSON(w, http.StatusCreated, map[string]any{"account": a})
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	var req accountRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := s.groups.UpdateAccount(accountID, groups.AccountUpdate{
		Code:     req.Code,
		Name:     req.Name,
		GroupIDs: req.GroupIDs,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.chartChanged(r, "update_account", a.ID, fmt.Sprintf("code=%d groups=%s", a.Code, strings.Join(a.GroupIDs, ";")))
	writeJSON(w, http.StatusOK, map[string]any{"account": a})
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	deleted := s.groups.DeleteAccount(accountID)
	if deleted {
		s.chartChanged(r, "delete_account", accountID, "")
	}
	writeDeleted(w, deleted, "account", accountID)
}

type pogoAccount struct {
	model.ClientAccount
	DefaultMainGroup int `json:"defaultMainGroup"`
}

func (s *Server) listPogoAccounts(w http.ResponseWriter, r *http.Request) {
	all := s.pogo.All()
	out := make([]pogoAccount, len(all))
	for i, a := range all {
		out[i] = pogoAccount{ClientAccount: a, DefaultMainGroup: accounts.DefaultMainGroup(a.AccountNumber)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}
