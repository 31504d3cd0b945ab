// handlers_test.go - API handler tests
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiring-animator/backend/internal/config"
	"github.com/wiring-animator/backend/internal/models"
	"github.com/wiring-animator/backend/internal/session"
	"github.com/wiring-animator/backend/internal/store"
)

const testDrawing = `<svg xmlns="http://www.w3.org/2000/svg">
<g id="layerWires">
<g id="circuit_x005F_1"><path d="M0 0 L10 0"/></g>
<g id="circuit_x005F_2"><path d="M0 5 L10 5"/></g>
</g>
<g id="layerSwitches">
<g id="switch_x005F_1"><g id="switch_x005F_1_x005F_1"/><g id="switch_x005F_1_x005F_2" display="none"/></g>
</g>
<g id="layerDcballoons">
<g id="dcballoon_x005F_1"><text><tspan>I</tspan></text></g>
</g>
</svg>`

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	dir := t.TempDir()

	ws, err := store.NewWorkspace(dir + "/workspace")
	require.NoError(t, err)
	ix, err := store.OpenAlbumIndex(dir+"/albums.duckdb", 2, "256MB")
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })

	require.NoError(t, ws.SaveDrawing("acme", "Headlights", strings.NewReader(testDrawing)))
	require.NoError(t, ix.Register(&models.SlideAlbum{Title: "Headlights", Customer: "acme", SVGFile: "drawing.svg"}))

	m := session.NewManager(ws, ix, config.DefaultConventions(), time.Minute)
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	return NewHandler(m, "test", true), e
}

func doJSON(e *echo.Echo, method, path, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

func openTestSession(t *testing.T, h *Handler, e *echo.Echo) string {
	t.Helper()
	c, rec := doJSON(e, http.MethodPost, "/api/sessions", `{"title":"Headlights","customer":"acme"}`)
	require.NoError(t, h.HandleOpenSession(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	id, _ := resp["sessionId"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHandleHealth(t *testing.T) {
	h, e := newTestHandler(t)
	c, rec := doJSON(e, http.MethodGet, "/api/health", "")

	assert.NoError(t, h.HandleHealth(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleListAlbums(t *testing.T) {
	h, e := newTestHandler(t)
	c, rec := doJSON(e, http.MethodGet, "/api/albums", "")

	assert.NoError(t, h.HandleListAlbums(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Albums []models.SlideAlbum `json:"albums"`
		Count  int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Headlights", resp.Albums[0].Title)

	t.Run("customer filter", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodGet, "/api/albums?customer=nobody", "")
		assert.NoError(t, h.HandleListAlbums(c))
		assert.Contains(t, rec.Body.String(), `"count":0`)
	})
}

func TestHandleRegisterAlbum(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/albums?title=Wipers&customer=acme", strings.NewReader(testDrawing))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.HandleRegisterAlbum(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Wipers"`)

	t.Run("missing title", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/albums?customer=acme", strings.NewReader(testDrawing))
		rec := httptest.NewRecorder()
		assert.NoError(t, h.HandleRegisterAlbum(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleOpenSession(t *testing.T) {
	h, e := newTestHandler(t)
	c, rec := doJSON(e, http.MethodPost, "/api/sessions", `{"title":"Headlights","customer":"acme"}`)

	require.NoError(t, h.HandleOpenSession(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		SessionID string `json:"sessionId"`
		Legacy    bool   `json:"legacy"`
		Actors    struct {
			Wires    []wireInfo    `json:"wires"`
			Switches []switchInfo  `json:"switches"`
			Balloons []balloonInfo `json:"balloons"`
		} `json:"actors"`
		Slides *models.AnimationDocument `json:"slides"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.False(t, resp.Legacy)
	assert.Len(t, resp.Actors.Wires, 2)
	assert.Len(t, resp.Actors.Switches, 1)
	assert.Equal(t, "1", resp.Actors.Switches[0].Default)
	assert.Len(t, resp.Actors.Balloons, 1)
	require.NotNil(t, resp.Slides)
	assert.Len(t, resp.Slides.Slides, 1)

	t.Run("already open", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/api/sessions", `{"title":"Headlights","customer":"acme"}`)
		assert.NoError(t, h.HandleOpenSession(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown album", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/api/sessions", `{"title":"Nope","customer":"acme"}`)
		assert.NoError(t, h.HandleOpenSession(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleCloseSession(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	c, rec := doJSON(e, http.MethodDelete, "/api/sessions/"+id, "", "sessionId", id)
	assert.NoError(t, h.HandleCloseSession(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("album reopenable after close", func(t *testing.T) {
		openTestSession(t, h, e)
	})
}

func TestTimelineEndpoints(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	c, rec := doJSON(e, http.MethodPost, "/", `{"title":"Key on"}`, "sessionId", id)
	require.NoError(t, h.HandleAddSlide(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slideCount":2`)

	c, rec = doJSON(e, http.MethodPost, "/",
		`{"actorId":"circuit_x005F_1","state":{"kind":"wire","state":"hot"}}`, "sessionId", id)
	require.NoError(t, h.HandleRecordChange(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = doJSON(e, http.MethodPost, "/", "", "sessionId", id)
	require.NoError(t, h.HandlePropagateChanges(c))
	assert.Contains(t, rec.Body.String(), `"slidesUpdated":0`)

	c, rec = doJSON(e, http.MethodDelete, "/", "", "sessionId", id)
	require.NoError(t, h.HandleDeleteSlide(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slideCount":1`)

	t.Run("initial slide protected", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodDelete, "/", "", "sessionId", id)
		assert.NoError(t, h.HandleDeleteSlide(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INITIAL_SLIDE")
	})

	t.Run("load slide", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/", "", "sessionId", id, "index", "0")
		assert.NoError(t, h.HandleLoadSlide(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("save slides", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPut, "/", "", "sessionId", id)
		assert.NoError(t, h.HandleSaveSlides(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	c, rec := doJSON(e, http.MethodPost, "/",
		`{"type":"heater","name":"Heater Feed","color":"pink"}`, "sessionId", id)
	require.NoError(t, h.HandleAddCircuitType(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, rec = doJSON(e, http.MethodPost, "/",
		`{"wireId":"circuit_x005F_1","type":"heater"}`, "sessionId", id)
	require.NoError(t, h.HandleAssignWire(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("rename cascades to assignment", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPut, "/",
			`{"name":"Heater Feed","color":"pink","newType":"blower"}`, "sessionId", id, "code", "heater")
		require.NoError(t, h.HandleUpdateCircuitType(c))
		require.Equal(t, http.StatusOK, rec.Code)

		c, rec = doJSON(e, http.MethodGet, "/", "", "sessionId", id)
		require.NoError(t, h.HandleGetCircuitTypes(c))
		var doc models.CircuitTypesDocument
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "blower", doc.CircuitTypesToWires["circuit_x005F_1"])
	})

	t.Run("delete clears assignments", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodDelete, "/", "", "sessionId", id, "code", "blower")
		require.NoError(t, h.HandleDeleteCircuitType(c))
		require.Equal(t, http.StatusNoContent, rec.Code)

		c, rec = doJSON(e, http.MethodGet, "/", "", "sessionId", id)
		require.NoError(t, h.HandleGetCircuitTypes(c))
		assert.NotContains(t, rec.Body.String(), "circuit_x005F_1")
	})

	t.Run("assign unknown type", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/",
			`{"wireId":"circuit_x005F_1","type":"nope"}`, "sessionId", id)
		assert.NoError(t, h.HandleAssignWire(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHighlightEndpoints(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	c, rec := doJSON(e, http.MethodPost, "/",
		`{"wireId":"circuit_x005F_1"}`, "sessionId", id)
	require.NoError(t, h.HandleHighlightClick(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"selected":true`)

	t.Run("width adjusts selected wires", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/", `{"steps":2}`, "sessionId", id)
		require.NoError(t, h.HandleHighlightWidth(c))
		assert.Contains(t, rec.Body.String(), `"wiresAdjusted":1`)
	})

	t.Run("reset clears selection", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/", "", "sessionId", id)
		require.NoError(t, h.HandleHighlightReset(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		c, rec = doJSON(e, http.MethodPost, "/", `{"steps":1}`, "sessionId", id)
		require.NoError(t, h.HandleHighlightWidth(c))
		assert.Contains(t, rec.Body.String(), `"wiresAdjusted":0`)
	})

	t.Run("unknown wire", func(t *testing.T) {
		c, rec := doJSON(e, http.MethodPost, "/", `{"wireId":"nope"}`, "sessionId", id)
		assert.NoError(t, h.HandleHighlightClick(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleGetDrawing(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	c, rec := doJSON(e, http.MethodGet, "/", "", "sessionId", id)
	require.NoError(t, h.HandleGetDrawing(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), "layerWires")
}

func TestHandleExportBundle(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	c, rec := doJSON(e, http.MethodGet, "/", "", "sessionId", id)
	require.NoError(t, h.HandleExportBundle(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-msgpack", rec.Header().Get(echo.HeaderContentType))
	assert.NotZero(t, rec.Body.Len())
}

func TestHandleGetWarnings(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	// Record a change for a wire, then make its existence doubtful by
	// referencing an id the drawing never had.
	c, _ := doJSON(e, http.MethodPost, "/",
		`{"actorId":"circuit_x005F_1","state":{"kind":"wire","state":"hot"}}`, "sessionId", id)
	require.NoError(t, h.HandleRecordChange(c))

	c, rec := doJSON(e, http.MethodGet, "/", "", "sessionId", id)
	require.NoError(t, h.HandleGetWarnings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestHandleDeleteAlbum(t *testing.T) {
	h, e := newTestHandler(t)

	c, rec := doJSON(e, http.MethodDelete, "/", "", "customer", "acme", "title", "Headlights")
	require.NoError(t, h.HandleDeleteAlbum(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("deletion disabled", func(t *testing.T) {
		h2, e2 := newTestHandler(t)
		h2.allowDeletion = false
		c, rec := doJSON(e2, http.MethodDelete, "/", "", "customer", "acme", "title", "Headlights")
		assert.NoError(t, h2.HandleDeleteAlbum(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "DELETION_DISABLED")
	})

	t.Run("locked album protected", func(t *testing.T) {
		h3, e3 := newTestHandler(t)
		openTestSession(t, h3, e3)
		c, rec := doJSON(e3, http.MethodDelete, "/", "", "customer", "acme", "title", "Headlights")
		assert.NoError(t, h3.HandleDeleteAlbum(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestConcurrentSlideAccess(t *testing.T) {
	h, e := newTestHandler(t)
	id := openTestSession(t, h, e)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c, _ := doJSON(e, http.MethodPost, "/", `{"title":"step"}`, "sessionId", id)
			assert.NoError(t, h.HandleAddSlide(c))
		}()
		go func() {
			defer wg.Done()
			c, _ := doJSON(e, http.MethodGet, "/", "", "sessionId", id)
			assert.NoError(t, h.HandleGetSlides(c))
		}()
	}
	wg.Wait()

	c, rec := doJSON(e, http.MethodGet, "/", "", "sessionId", id)
	require.NoError(t, h.HandleGetSlides(c))

	var resp struct {
		Timeline models.AnimationDocument `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Timeline.Slides, 9)
}
