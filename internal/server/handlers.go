package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardwatch-dev/cardwatch/internal/export"
	"github.com/cardwatch-dev/cardwatch/internal/model"
	"github.com/cardwatch-dev/cardwatch/internal/review"
	"github.com/cardwatch-dev/cardwatch/internal/scoring"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) listTransactions(c *gin.Context) {
	cfg, ok := sortFromQuery(c)
	if !ok {
		return
	}
	txns := s.batch.Sorted(cfg)
	items := make([]transactionResponse, len(txns))
	for i, t := range txns {
		items[i] = newTransactionResponse(t)
	}
	c.JSON(http.StatusOK, listResponse[transactionResponse]{
		Sort:  newSortResponse(cfg),
		Count: len(items),
		Items: items,
	})
}

func (s *Server) getTransaction(c *gin.Context) {
	txn, err := s.batch.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, newTransactionResponse(txn))
}

func (s *Server) processTransaction(c *gin.Context) {
	o, status, err := s.process(c, c.Param("id"))
	if err != nil {
		c.JSON(status, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, newOutcomeResponse(o))
}

// process runs the review flow and maps failures to HTTP statuses.
func (s *Server) process(c *gin.Context, id string) (model.Outcome, int, error) {
	txn, err := s.batch.Get(id)
	if err != nil {
		return model.Outcome{}, http.StatusNotFound, err
	}
	o, err := s.reviews.Process(c.Request.Context(), txn)
	var missing *scoring.MissingFeaturesError
	switch {
	case errors.Is(err, review.ErrBusy):
		return model.Outcome{}, http.StatusConflict, err
	case errors.As(err, &missing):
		return model.Outcome{}, http.StatusUnprocessableEntity, err
	case err != nil:
		return model.Outcome{}, http.StatusBadGateway, err
	}
	return o, http.StatusOK, nil
}

func (s *Server) listFlagged(c *gin.Context) {
	cfg, ok := sortFromQuery(c)
	if !ok {
		return
	}
	outcomes := s.reviews.Board().List(cfg)
	items := make([]outcomeResponse, len(outcomes))
	for i, o := range outcomes {
		items[i] = newOutcomeResponse(o)
	}
	c.JSON(http.StatusOK, listResponse[outcomeResponse]{
		Sort:  newSortResponse(cfg),
		Count: len(items),
		Items: items,
	})
}

func (s *Server) getFlagged(c *gin.Context) {
	o, ok := s.reviews.Board().Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no review for transaction " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, newOutcomeResponse(o))
}

func (s *Server) exportFlagged(c *gin.Context) {
	outcomes := s.reviews.Board().List(model.DefaultSort)
	rows := make([]export.Row, len(outcomes))
	for i, o := range outcomes {
		rows[i] = export.FromOutcome(o)
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rows); err != nil {
		s.logger.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="flagged.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func sortFromQuery(c *gin.Context) (model.SortConfig, bool) {
	cfg, err := model.ParseSortConfig(c.Query("sort"), c.Query("dir"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return model.SortConfig{}, false
	}
	return cfg, true
}
