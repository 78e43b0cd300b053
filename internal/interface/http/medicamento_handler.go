package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/internal/application/state"
	"github.com/oksasatya/medication-reminder/internal/application/usecase"
	"github.com/oksasatya/medication-reminder/internal/container"
	"github.com/oksasatya/medication-reminder/internal/domain/entity"
	"github.com/oksasatya/medication-reminder/internal/interface/middleware"
	"github.com/oksasatya/medication-reminder/pkg/response"
	"github.com/oksasatya/medication-reminder/pkg/validation"
)

type MedicamentoHandler struct {
	C      *container.Container
	Logger *logrus.Logger
}

func NewMedicamentoHandler(c *container.Container) *MedicamentoHandler {
	return &MedicamentoHandler{C: c, Logger: c.Logger}
}

type medicamentoRequest struct {
	ID                  string   `json:"id"`
	Nome                *string  `json:"nome"`
	Dosagem             *string  `json:"dosagem"`
	Horario             *string  `json:"horario" binding:"omitempty,horario"`
	Frequencia          *string  `json:"frequencia"`
	QuantidadeConsumida *float64 `json:"quantidadeConsumida" binding:"omitempty,quantidade"`
	QuantidadeTotal     *float64 `json:"quantidadeTotal" binding:"omitempty,quantidade"`
	DosesDia            *string  `json:"dosesDia"`
	Cor                 *string  `json:"cor" binding:"omitempty,hexcor"`
	FotoURI             *string  `json:"fotoUri"`
}

// apply copies the fields present in r onto m.
func (r medicamentoRequest) apply(m entity.Medicamento) entity.Medicamento {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&m.Nome, r.Nome)
	set(&m.Dosagem, r.Dosagem)
	set(&m.Horario, r.Horario)
	set(&m.Frequencia, r.Frequencia)
	set(&m.DosesDia, r.DosesDia)
	set(&m.Cor, r.Cor)
	set(&m.FotoURI, r.FotoURI)
	if r.QuantidadeConsumida != nil {
		m.QuantidadeConsumida = *r.QuantidadeConsumida
	}
	if r.QuantidadeTotal != nil {
		m.QuantidadeTotal = *r.QuantidadeTotal
	}
	return m
}

type medicamentoView struct {
	ID                  string    `json:"id"`
	UsuarioID           string    `json:"usuarioId"`
	Nome                string    `json:"nome"`
	Dosagem             string    `json:"dosagem"`
	Horario             string    `json:"horario"`
	Frequencia          string    `json:"frequencia"`
	QuantidadeConsumida float64   `json:"quantidadeConsumida"`
	QuantidadeTotal     float64   `json:"quantidadeTotal"`
	Restante            float64   `json:"restante"`
	DosesDia            string    `json:"dosesDia,omitempty"`
	Cor                 string    `json:"cor"`
	FotoURI             string    `json:"fotoUri,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func newMedicamentoView(m entity.Medicamento) medicamentoView {
	return medicamentoView{
		ID:                  m.ID,
		UsuarioID:           m.UsuarioID,
		Nome:                m.Nome,
		Dosagem:             m.Dosagem,
		Horario:             m.Horario,
		Frequencia:          m.Frequencia,
		QuantidadeConsumida: m.QuantidadeConsumida,
		QuantidadeTotal:     m.QuantidadeTotal,
		Restante:            m.Restante(),
		DosesDia:            m.DosesDia,
		Cor:                 m.Cor,
		FotoURI:             m.FotoURI,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func newMedicamentoViews(list []entity.Medicamento) []medicamentoView {
	out := make([]medicamentoView, 0, len(list))
	for _, m := range list {
		out = append(out, newMedicamentoView(m))
	}
	return out
}

func (h *MedicamentoHandler) useCases(c *gin.Context) (usecase.MedicamentoUseCases, bool) {
	ucs, err := h.C.MedicamentoUseCases(middleware.UserID(c))
	if err != nil {
		fail(c, h.Logger, err, "medicamento backend unavailable")
		return ucs, false
	}
	return ucs, true
}

func (h *MedicamentoHandler) newState(c *gin.Context, opts ...state.MedicamentoOption) (*state.MedicamentoState, bool) {
	ucs, ok := h.useCases(c)
	if !ok {
		return nil, false
	}
	opts = append([]state.MedicamentoOption{state.WithMedicamentoLogger(h.Logger)}, opts...)
	return state.NewMedicamentoState(middleware.UserID(c), ucs, opts...), true
}

func (h *MedicamentoHandler) respondList(c *gin.Context, status int, list []entity.Medicamento, msg string) {
	response.Success(c, status, newMedicamentoViews(list), msg, map[string]any{"count": len(list)})
}

// List GET /api/medicamentos
func (h *MedicamentoHandler) List(c *gin.Context) {
	st, ok := h.newState(c)
	if !ok {
		return
	}
	list, err := st.Load(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err, "falha ao listar medicamentos")
		return
	}
	h.respondList(c, http.StatusOK, list, "medicamentos")
}

// Get GET /api/medicamentos/:id
func (h *MedicamentoHandler) Get(c *gin.Context) {
	ucs, ok := h.useCases(c)
	if !ok {
		return
	}
	m, err := ucs.Obter.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "falha ao buscar medicamento")
		return
	}
	if m == nil {
		response.Error[any](c, http.StatusNotFound, "medicamento not found", nil)
		return
	}
	response.Success(c, http.StatusOK, newMedicamentoView(*m), "medicamento", nil)
}

// Create POST /api/medicamentos
func (h *MedicamentoHandler) Create(c *gin.Context) {
	var req medicamentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	missing := map[string]string{}
	if req.Nome == nil || strings.TrimSpace(*req.Nome) == "" {
		missing["nome"] = "is required"
	}
	if req.Horario == nil {
		missing["horario"] = "is required"
	}
	if len(missing) > 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", missing)
		return
	}
	st, ok := h.newState(c)
	if !ok {
		return
	}
	list, err := st.Adicionar(c.Request.Context(), req.apply(entity.Medicamento{ID: strings.TrimSpace(req.ID)}))
	if err != nil {
		fail(c, h.Logger, err, "falha ao salvar medicamento")
		return
	}
	h.respondList(c, http.StatusCreated, list, "medicamento created")
}

// Update PUT /api/medicamentos/:id
// Fields absent from the body keep their stored value.
func (h *MedicamentoHandler) Update(c *gin.Context) {
	var req medicamentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Nome != nil && strings.TrimSpace(*req.Nome) == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"nome": "is required"})
		return
	}
	ucs, ok := h.useCases(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	cur, err := ucs.Obter.Execute(ctx, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "falha ao buscar medicamento")
		return
	}
	if cur == nil {
		response.Error[any](c, http.StatusNotFound, "medicamento not found", nil)
		return
	}
	st := state.NewMedicamentoState(middleware.UserID(c), ucs, state.WithMedicamentoLogger(h.Logger))
	list, err := st.Editar(ctx, req.apply(*cur))
	if err != nil {
		fail(c, h.Logger, err, "falha ao atualizar medicamento")
		return
	}
	h.respondList(c, http.StatusOK, list, "medicamento updated")
}

// Delete DELETE /api/medicamentos/:id
func (h *MedicamentoHandler) Delete(c *gin.Context) {
	st, ok := h.newState(c)
	if !ok {
		return
	}
	list, err := st.Excluir(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "falha ao excluir medicamento")
		return
	}
	h.respondList(c, http.StatusOK, list, "medicamento deleted")
}

// Dose POST /api/medicamentos/:id/dose
func (h *MedicamentoHandler) Dose(c *gin.Context) {
	ctx := c.Request.Context()
	var opts []state.MedicamentoOption
	if h.C.Notifier.Enabled() {
		name, email := h.currentContact(c)
		opts = append(opts, state.WithLowSupply(h.C.Config.LowSupplyThreshold, h.C.Notifier.LowSupply(name, email)))
	}
	st, ok := h.newState(c, opts...)
	if !ok {
		return
	}
	list, err := st.RegistrarDose(ctx, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "falha ao registrar dose")
		return
	}
	h.respondList(c, http.StatusOK, list, "dose registered")
}

// currentContact resolves who receives supply alerts. Failures yield
// empty values, which silence the alert.
func (h *MedicamentoHandler) currentContact(c *gin.Context) (string, string) {
	ucs, err := h.C.UserUseCases()
	if err != nil {
		return "", ""
	}
	u, err := ucs.GetCurrentUser.Execute(c.Request.Context())
	if err != nil || u == nil {
		return "", ""
	}
	return u.Name.Value(), u.Email.Value()
}

// UploadFoto POST /api/medicamentos/:id/foto (multipart field "file")
func (h *MedicamentoHandler) UploadFoto(c *gin.Context) {
	ucs, ok := h.useCases(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	cur, err := ucs.Obter.Execute(ctx, c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err, "falha ao buscar medicamento")
		return
	}
	if cur == nil {
		response.Error[any](c, http.StatusNotFound, "medicamento not found", nil)
		return
	}
	out, ok := upload(c, h.C, h.Logger, middleware.UserID(c), h.C.Config.UploadFolder)
	if !ok {
		return
	}
	next := *cur
	next.FotoURI = out.URL
	st := state.NewMedicamentoState(middleware.UserID(c), ucs, state.WithMedicamentoLogger(h.Logger))
	list, err := st.Editar(ctx, next)
	if err != nil {
		fail(c, h.Logger, err, "falha ao atualizar medicamento")
		return
	}
	h.respondList(c, http.StatusOK, list, "foto updated")
}

// Search GET /api/medicamentos/search?q=&size=
func (h *MedicamentoHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	ucs, ok := h.useCases(c)
	if !ok {
		return
	}
	list, err := ucs.Buscar.Execute(c.Request.Context(), q, size)
	if err != nil {
		fail(c, h.Logger, err, "search failed")
		return
	}
	h.respondList(c, http.StatusOK, list, "search results")
}
