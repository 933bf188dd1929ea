package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

const (
	tabDashboard   = "dashboard"
	tabTransaction = "transaction"
)

type pageData struct {
	Tab  string
	Sort model.SortConfig

	// Dashboard tab.
	Flagged []model.Outcome
	Detail  *model.Outcome

	// Transaction tab.
	Transactions []model.Transaction
	Selected     *model.Transaction
	Result       *model.Outcome
	Error        string
}

func (s *Server) page(c *gin.Context) {
	data, ok := s.pageData(c, c.Query("tab"), c.Query("selected"))
	if !ok {
		return
	}
	if id := c.Query("detail"); id != "" {
		if o, found := s.reviews.Board().Get(id); found {
			data.Detail = &o
		}
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// processForm handles the Transaction tab's Process button.
func (s *Server) processForm(c *gin.Context) {
	id := c.PostForm("id")
	data, ok := s.pageData(c, tabTransaction, id)
	if !ok {
		return
	}
	if id == "" {
		data.Error = "Select a transaction first."
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	o, status, err := s.process(c, id)
	if err != nil {
		s.logger.Warn("processing failed", "transaction_id", id, "error", err)
		data.Error = "There was an error processing transaction " + id + ": " + err.Error()
		c.HTML(status, "index.html", data)
		return
	}
	data.Result = &o
	data.Flagged = s.reviews.Board().List(data.Sort)
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) pageData(c *gin.Context, tab, selected string) (pageData, bool) {
	cfg, ok := sortFromQuery(c)
	if !ok {
		return pageData{}, false
	}
	if tab != tabTransaction {
		tab = tabDashboard
	}
	data := pageData{
		Tab:          tab,
		Sort:         cfg,
		Flagged:      s.reviews.Board().List(cfg),
		Transactions: s.batch.All(),
	}
	if selected != "" {
		if txn, err := s.batch.Get(selected); err == nil {
			data.Selected = &txn
		}
	}
	return data, true
}
