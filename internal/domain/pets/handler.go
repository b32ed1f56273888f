package pets

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	maxBodyBytes = 1 << 20

	// insertFailed es el error del soft failure de create.
	insertFailed = "insert failed"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc))
		pr.Post("/", createPetHandler(svc))
		pr.Patch("/", updatePetsHandler(svc))
		pr.Delete("/", deletePetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
	})
}

type createdResponse struct {
	URI string `json:"uri"`
	ID  int64  `json:"id"`
}

type rowsAffectedResponse struct {
	RowsAffected int64 `json:"rows_affected"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason Reason `json:"reason,omitempty"`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Consulta la collection. Acepta proyección, filtro con placeholders y orden.
// @Tags pets
// @Produce json
// @Param projection query string false "Columnas separadas por coma (_id,name,breed,gender,weight)"
// @Param where query string false "Predicado con placeholders ?, p.ej. gender = ?"
// @Param arg query []string false "Argumentos del predicado, en orden" collectionFormat(multi)
// @Param sort query string false "Orden, p.ej. name ASC, _id DESC"
// @Success 200 {array} object
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fetchAndWrite(w, r, svc, svc.Matcher().CollectionURI(), false)
	}
}

// getPetHandler godoc
// @Summary Obtener una mascota
// @Tags pets
// @Produce json
// @Param petID path int true "Row key de la mascota"
// @Param projection query string false "Columnas separadas por coma"
// @Success 200 {object} object
// @Failure 400 {object} errorResponse "id mal formado"
// @Failure 404 {object} errorResponse "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fetchAndWrite(w, r, svc, itemURI(svc, r), true)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description name y gender son obligatorios; gender acepta 0/1/2 o unknown/male/female. weight >= 0 opcional.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body object true "Fieldset"
// @Success 201 {object} createdResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse "insert failed"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fs, err := decodeFieldSet(w, r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
			return
		}

		item, err := svc.Create(r.Context(), svc.Matcher().CollectionURI(), fs)
		if err != nil {
			writeError(w, err)
			return
		}
		if item == "" {
			// soft failure: ya quedó logueado en el service
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: insertFailed})
			return
		}

		m, _ := svc.Matcher().Match(item)
		w.Header().Set("Location", "/pets/"+strconv.FormatInt(m.ID, 10))
		writeJSON(w, http.StatusCreated, createdResponse{URI: item, ID: m.ID})
	}
}

// updatePetHandler godoc
// @Summary Actualizar una mascota (PATCH parcial)
// @Description Solo se tocan los campos presentes. weight/breed en null limpian la columna.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path int true "Row key de la mascota"
// @Param payload body object true "Fieldset parcial"
// @Success 200 {object} rowsAffectedResponse
// @Failure 400 {object} errorResponse
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modifyAndWrite(w, r, svc, itemURI(svc, r))
	}
}

// updatePetsHandler godoc
// @Summary Actualizar mascotas que cumplen un filtro
// @Tags pets
// @Accept json
// @Produce json
// @Param where query string false "Predicado con placeholders ?"
// @Param arg query []string false "Argumentos del predicado" collectionFormat(multi)
// @Param payload body object true "Fieldset parcial"
// @Success 200 {object} rowsAffectedResponse
// @Failure 400 {object} errorResponse
// @Router /pets [patch]
func updatePetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modifyAndWrite(w, r, svc, svc.Matcher().CollectionURI())
	}
}

// deletePetHandler godoc
// @Summary Borrar una mascota
// @Description Borrar un id inexistente devuelve rows_affected=0.
// @Tags pets
// @Produce json
// @Param petID path int true "Row key de la mascota"
// @Success 200 {object} rowsAffectedResponse
// @Failure 400 {object} errorResponse
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removeAndWrite(w, r, svc, itemURI(svc, r))
	}
}

// deletePetsHandler godoc
// @Summary Borrar mascotas que cumplen un filtro
// @Description Sin where borra toda la collection.
// @Tags pets
// @Produce json
// @Param where query string false "Predicado con placeholders ?"
// @Param arg query []string false "Argumentos del predicado" collectionFormat(multi)
// @Success 200 {object} rowsAffectedResponse
// @Router /pets [delete]
func deletePetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removeAndWrite(w, r, svc, svc.Matcher().CollectionURI())
	}
}

func fetchAndWrite(w http.ResponseWriter, r *http.Request, svc *Service, uri string, single bool) {
	q := Query{
		Projection: splitList(r.URL.Query().Get("projection")),
		Filter:     filterFromQuery(r.URL.Query()),
		Sort:       r.URL.Query().Get("sort"),
	}

	cur, err := svc.Fetch(r.Context(), uri, q)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := Collect(cur)
	if err != nil {
		writeError(w, &StorageError{URI: uri, Op: "fetch", Err: err})
		return
	}

	if typ, err := svc.Type(uri); err == nil {
		w.Header().Set("X-Resource-Type", typ)
	}
	w.Header().Set("X-Notification-URI", cur.NotificationURI())

	if !single {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	if len(rows) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "pet not found"})
		return
	}
	writeJSON(w, http.StatusOK, rows[0])
}

func modifyAndWrite(w http.ResponseWriter, r *http.Request, svc *Service, uri string) {
	fs, err := decodeFieldSet(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}

	n, err := svc.Modify(r.Context(), uri, fs, filterFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rowsAffectedResponse{RowsAffected: n})
}

func removeAndWrite(w http.ResponseWriter, r *http.Request, svc *Service, uri string) {
	n, err := svc.Remove(r.Context(), uri, filterFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rowsAffectedResponse{RowsAffected: n})
}

// itemURI arma el identificador con el segmento tal cual llegó; el Matcher
// decide si es un id válido.
func itemURI(svc *Service, r *http.Request) string {
	return svc.Matcher().CollectionURI() + "/" + url.PathEscape(chi.URLParam(r, "petID"))
}

// decodeFieldSet decodifica un objeto JSON preservando presencia de campos
// (null != ausente). gender acepta también el nombre (male, female, unknown).
func decodeFieldSet(w http.ResponseWriter, r *http.Request) (FieldSet, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("body must be a json object")
	}

	fs := make(FieldSet, len(raw))
	for k, v := range raw {
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		fs[k] = val
	}

	if s, ok := fs[ColumnGender].(string); ok {
		if g, ok := ParseGender(s); ok {
			fs[ColumnGender] = g
		}
	}
	return fs, nil
}

func filterFromQuery(v url.Values) Filter {
	where := strings.TrimSpace(v.Get("where"))
	if where == "" {
		return Filter{}
	}
	args := make([]any, 0, len(v["arg"]))
	for _, a := range v["arg"] {
		args = append(args, a)
	}
	return Filter{Where: where, Args: args}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	var fe *FieldError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: fe.Field, Reason: fe.Reason})
	case errors.Is(err, ErrMalformedIdentifierSuffix):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrUnsupportedIdentifier):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
