package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flav-dev/flav/internal/clients"
	"github.com/flav-dev/flav/internal/model"
)

func (s *Server) clientRoutes(r chi.Router) {
	r.Get("/", s.listClients)
	r.Post("/", s.createClient)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.getClient)
		r.Put("/", s.renameClient)
		r.Delete("/", s.deleteClient)
		r.Post("/duplicate", s.duplicateClient)
		r.Get("/export", s.exportClient)

		r.Get("/account-groups", s.listAccountGroups)
		r.Post("/account-groups", s.createAccountGroup)
		r.Put("/account-groups/{groupId}", s.updateAccountGroup)
		r.Delete("/account-groups/{groupId}", s.deleteAccountGroup)
		r.Post("/account-groups/{groupId}/accounts", s.addClientAccount)
		r.Put("/account-groups/{groupId}/accounts/{accountId}", s.setMainGroup)
		r.Delete("/account-groups/{groupId}/accounts/{accountId}", s.removeClientAccount)

		r.Get("/hierarchy", s.getHierarchy)
		r.Post("/hierarchy", s.addNode)
		r.Put("/hierarchy/{nodeId}", s.updateNode)
		r.Delete("/hierarchy/{nodeId}", s.deleteNode)
		r.Put("/hierarchy/{nodeId}/account-groups", s.setNodeAccountGroups)
		r.Post("/hierarchy/{nodeId}/account-groups/{groupId}", s.toggleNodeAccountGroup)

		r.Get("/users", s.listUsers)
		r.Post("/users", s.addUser)
		r.Put("/users/{email}", s.updateUser)
		r.Delete("/users/{email}", s.removeUser)
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"clients": s.clients.List()})
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.clients.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, c.ID, "create_client", c.ID, "name="+c.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"client": c})
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.clients.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"client": c})
}

func (s *Server) renameClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.clients.Rename(r.Context(), clientID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "rename_client", clientID, "name="+c.Name)
	writeJSON(w, http.StatusOK, map[string]any{"client": c})
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	deleted, err := s.clients.Delete(r.Context(), clientID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deleted {
		s.record(r, clientID, "delete_client", clientID, "")
	}
	writeDeleted(w, deleted, "client", clientID)
}

func (s *Server) duplicateClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.clients.Duplicate(r.Context(), clientID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, c.ID, "duplicate_client", c.ID, "source="+clientID)
	writeJSON(w, http.StatusCreated, map[string]any{"client": c})
}

func (s *Server) exportClient(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	out, err := s.clients.Export(clientID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clientID+"-export.json"))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listAccountGroups(w http.ResponseWriter, r *http.Request) {
	c, err := s.clients.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accountGroups": c.AccountGroups})
}

type accountGroupRequest struct {
	Name          *string        `json:"name"`
	ParentGroupID optionalString `json:"parentGroupId"`
}

func (s *Server) createAccountGroup(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	var req accountGroupRequest
	if !decode(w, r, &req) {
		return
	}
	var name string
	if req.Name != nil {
		name = *req.Name
	}
	g, err := s.clients.CreateAccountGroup(r.Context(), clientID, name, req.ParentGroupID.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "create_account_group", g.ID, "name="+g.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"accountGroup": g})
}

func (s *Server) updateAccountGroup(w http.ResponseWriter, r *http.Request) {
	clientID, groupID := chi.URLParam(r, "id"), chi.URLParam(r, "groupId")
	var req accountGroupRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := s.clients.UpdateAccountGroup(r.Context(), clientID, groupID, clients.AccountGroupUpdate{
		Name:          req.Name,
		ParentGroupID: req.ParentGroupID.ptr(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "update_account_group", g.ID, fmt.Sprintf("name=%s parent=%s", g.Name, g.ParentGroupID))
	writeJSON(w, http.StatusOK, map[string]any{"accountGroup": g})
}

func (s *Server) deleteAccountGroup(w http.ResponseWriter, r *http.Request) {
	clientID, groupID := chi.URLParam(r, "id"), chi.URLParam(r, "groupId")
	deleted, err := s.clients.DeleteAccountGroup(r.Context(), clientID, groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deleted {
		s.record(r, clientID, "delete_account_group", groupID, "")
	}
	writeDeleted(w, deleted, "account group", groupID)
}

type addAccountRequest struct {
	AccountNumber int `json:"accountNumber"`
}

func (s *Server) addClientAccount(w http.ResponseWriter, r *http.Request) {
	clientID, groupID := chi.URLParam(r, "id"), chi.URLParam(r, "groupId")
	var req addAccountRequest
	if !decode(w, r, &req) {
		return
	}
	src, ok := s.pogo.ByNumber(req.AccountNumber)
	if !ok {
		s.writeError(w, r, model.MissingReference("accountNumber", "POGO account", fmt.Sprint(req.AccountNumber)))
		return
	}
	a, err := s.clients.AddAccount(r.Context(), clientID, groupID, src)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "add_account", a.ID, fmt.Sprintf("group=%s number=%d", groupID, a.AccountNumber))
	writeJSON(w, http.StatusCreated, map[string]any{"account": a})
}

type mainGroupRequest struct {
	CustomMainGroup *int `json:"customMainGroup"`
}

func (s *Server) setMainGroup(w http.ResponseWriter, r *http.Request) {
	clientID, groupID, accountID := chi.URLParam(r, "id"), chi.URLParam(r, "groupId"), chi.URLParam(r, "accountId")
	var req mainGroupRequest
	if !decode(w, r, &req) {
		return
	}
	a, err := s.clients.SetMainGroup(r.Context(), clientID, groupID, accountID, req.CustomMainGroup)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	details := "mainGroup=default"
	if a.CustomMainGroup != nil {
		details = fmt.Sprintf("mainGroup=%d", *a.CustomMainGroup)
	}
	s.record(r, clientID, "set_main_group", a.ID, details)
	writeJSON(w, http.StatusOK, map[string]any{"account": a})
}

func (s *Server) removeClientAccount(w http.ResponseWriter, r *http.Request) {
	clientID, groupID, accountID := chi.URLParam(r, "id"), chi.URLParam(r, "groupId"), chi.URLParam(r, "accountId")
	deleted, err := s.clients.RemoveAccount(r.Context(), clientID, groupID, accountID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deleted {
		s.record(r, clientID, "remove_account", accountID, "group="+groupID)
	}
	writeDeleted(w, deleted, "account", accountID)
}

func (s *Server) getHierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := s.clients.HierarchyTree(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hierarchy": tree})
}

type nodeRequest struct {
	Name     *string        `json:"name"`
	ParentID optionalString `json:"parentId"`
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	var req nodeRequest
	if !decode(w, r, &req) {
		return
	}
	var name string
	if req.Name != nil {
		name = *req.Name
	}
	n, err := s.clients.AddNode(r.Context(), clientID, name, req.ParentID.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "add_node", n.ID, fmt.Sprintf("name=%s level=%d", n.Name, n.Level))
	writeJSON(w, http.StatusCreated, map[string]any{"node": n})
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	clientID, nodeID := chi.URLParam(r, "id"), chi.URLParam(r, "nodeId")
	var req nodeRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := s.clients.UpdateNode(r.Context(), clientID, nodeID, clients.NodeUpdate{
		Name:     req.Name,
		ParentID: req.ParentID.ptr(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "update_node", nodeID, fmt.Sprintf("name=%s parent=%s level=%d", n.Name, n.ParentID, n.Level))
	writeJSON(w, http.StatusOK, map[string]any{"node": n})
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	clientID, nodeID := chi.URLParam(r, "id"), chi.URLParam(r, "nodeId")
	deleted, err := s.clients.DeleteNode(r.Context(), clientID, nodeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deleted {
		s.record(r, clientID, "delete_node", nodeID, "")
	}
	writeDeleted(w, deleted, "hierarchy node", nodeID)
}

type nodeGroupsRequest struct {
	AccountGroupIDs []string `json:"accountGroupIds"`
}

func (s *Server) setNodeAccountGroups(w http.ResponseWriter, r *http.Request) {
	clientID, nodeID := chi.URLParam(r, "id"), chi.URLParam(r, "nodeId")
	var req nodeGroupsRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := s.clients.SetNodeAccountGroups(r.Context(), clientID, nodeID, req.AccountGroupIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "set_node_account_groups", nodeID, "groups="+strings.Join(n.AccountGroupIDs, ";"))
	writeJSON(w, http.StatusOK, map[string]any{"node": n})
}

func (s *Server) toggleNodeAccountGroup(w http.ResponseWriter, r *http.Request) {
	clientID, nodeID, groupID := chi.URLParam(r, "id"), chi.URLParam(r, "nodeId"), chi.URLParam(r, "groupId")
	n, err := s.clients.ToggleNodeAccountGroup(r.Context(), clientID, nodeID, groupID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "toggle_node_account_group", nodeID, "group="+groupID)
	writeJSON(w, http.StatusOK, map[string]any{"node": n})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.clients.Users(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	var u model.AuthorizedUser
	if !decode(w, r, &u) {
		return
	}
	u, err := s.clients.AddUser(r.Context(), clientID, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "add_user", u.Email, "access="+string(u.AccessLevel))
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

type userRequest struct {
	AccessLevel     *model.AccessLevel `json:"accessLevel"`
	AllowedGroupIDs []string           `json:"allowedGroupIds"`
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	email, err := emailParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.clients.UpdateUser(r.Context(), clientID, email, clients.UserUpdate{
		AccessLevel:     req.AccessLevel,
		AllowedGroupIDs: req.AllowedGroupIDs,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.record(r, clientID, "update_user", u.Email, "access="+string(u.AccessLevel))
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	email, err := emailParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	deleted, err := s.clients.RemoveUser(r.Context(), clientID, email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if deleted {
		s.record(r, clientID, "remove_user", email, "")
	}
	writeDeleted(w, deleted, "user", email)
}

func emailParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "email")
	email, err := url.PathUnescape(raw)
	if err != nil {
		return "", model.Invalid("email", fmt.Sprintf("malformed path segment %q", raw))
	}
	return email, nil
}
