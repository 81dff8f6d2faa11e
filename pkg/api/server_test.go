package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/notemaker/pkg/config"
	"github.com/james-see/notemaker/pkg/converter"
	"github.com/james-see/notemaker/pkg/engine"
	"github.com/james-see/notemaker/pkg/theory"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Environment: "test", Root: "C", Scale: "Major", Tempo: 120, Genre: "DNB"}
	return NewServer(engine.NewStore(11, cfg.Tempo, nil), cfg, nil).Router()
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func newSessionID(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct{ ID string }
	decode(t, w, &resp)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealthAndInfo(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = do(t, r, http.MethodGet, "/api/v1/scales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var scales struct{ Scales []theory.Scale }
	decode(t, w, &scales)
	assert.Len(t, scales.Scales, len(theory.ScaleNames()))

	w = do(t, r, http.MethodGet, "/api/v1/roots", nil)
	assert.Contains(t, w.Body.String(), `"C#"`)

	w = do(t, r, http.MethodGet, "/api/v1/formats", nil)
	assert.Contains(t, w.Body.String(), "json -> midi")
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t)
	w := do(t, r, http.MethodOptions, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSessionLifecycle(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)

	w := do(t, r, http.MethodGet, "/api/v1/sessions", nil)
	assert.Contains(t, w.Body.String(), id)

	w = do(t, r, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/chords", gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChordsAndRepaint(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)

	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/chords/repaint", gin.H{"seventh": true})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/chords", gin.H{
		"root":   "D",
		"scale":  "dorian",
		"params": gin.H{"bars": 4},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ProgressionResponse
	decode(t, w, &resp)
	assert.Len(t, resp.Degrees, 4)
	assert.Equal(t, "I", resp.Names[0])
	assert.Len(t, resp.Notes, 12)
	assert.Equal(t, 62, resp.Notes[0].Pitch)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/chords/repaint", gin.H{
		"seventh": true,
		"bass":    true,
		"revoice": true,
		"pedal":   "root",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var repainted ProgressionResponse
	decode(t, w, &repainted)
	assert.Equal(t, resp.Degrees, repainted.Degrees)
	assert.Len(t, repainted.Notes, 20)
}

func TestChordsBadInput(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)
	path := "/api/v1/sessions/" + id + "/chords"

	w := do(t, r, http.MethodPost, path, gin.H{"scale": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid scale")

	w = do(t, r, http.MethodPost, path, gin.H{"root": "H"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, path, gin.H{"params": gin.H{"bars": -1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, path, gin.H{"intervals": []int{2, 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMelodyAndAlternative(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)

	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/melody/alternative", gin.H{"probability": 50})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/melody", gin.H{
		"params": gin.H{"bars": 1, "degreeWeights": []float64{0, 0, 0, 0, 0, 0, 0}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid parameter")

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/melody", gin.H{
		"root":   "A",
		"scale":  "Minor Pentatonic",
		"params": gin.H{"bars": 2, "octaveStart": 4, "allowRepeats": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Notes []theory.Note
		Steps float64
	}
	decode(t, w, &res)
	assert.Equal(t, 32.0, res.Steps)
	assert.NotEmpty(t, res.Notes)

	tones, err := theory.ExpandScale(9, []int{3, 2, 2, 3, 2}, 0, 127)
	require.NoError(t, err)
	for _, n := range res.Notes {
		assert.True(t, theory.ContainsTone(tones, n.Pitch), "pitch %d off scale", n.Pitch)
	}

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/melody/alternative", gin.H{"probability": 0})
	require.Equal(t, http.StatusOK, w.Code)
	var alt struct{ Notes []theory.Note }
	decode(t, w, &alt)
	assert.Equal(t, res.Notes, alt.Notes)
}

func TestQuantizeGridAndStack(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)
	base := "/api/v1/sessions/" + id

	w := do(t, r, http.MethodPost, base+"/quantize", gin.H{
		"notes": []theory.Note{{Pitch: 66, Length: 1}, {Pitch: 68, Length: 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var q struct{ Notes []theory.Note }
	decode(t, w, &q)
	assert.Equal(t, 65, q.Notes[0].Pitch)
	assert.Equal(t, 67, q.Notes[1].Pitch)

	w = do(t, r, http.MethodPost, base+"/grid", gin.H{"step": 2, "pitch": 61, "state": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"corrections":[]`)

	w = do(t, r, http.MethodPost, base+"/grid/quantize", gin.H{"root": "C", "scale": "Major"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"2":[60]`)

	w = do(t, r, http.MethodPost, base+"/stack", gin.H{"scale": "Chromatic"})
	require.Equal(t, http.StatusOK, w.Code)
	var stack struct{ Notes []theory.Note }
	decode(t, w, &stack)
	assert.Len(t, stack.Notes, 128)
}

func TestText(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)

	w := do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/text", gin.H{"text": "A"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Notes []theory.Note
		Steps int
	}
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Notes)
	assert.Equal(t, 8, resp.Steps)

	w = do(t, r, http.MethodPost, "/api/v1/sessions/"+id+"/text", gin.H{"text": "A", "width": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaptureAndExport(t *testing.T) {
	r := setupRouter(t)
	id := newSessionID(t, r)
	base := "/api/v1/sessions/" + id

	w := do(t, r, http.MethodPost, base+"/tempo", gin.H{"normalized": 0.15479876})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tempo":120`)

	w = do(t, r, http.MethodPost, base+"/capture/events", gin.H{"events": []gin.H{
		{"status": 0x90, "data1": 60, "data2": 100, "time": "2024-01-01T00:00:00Z"},
		{"status": 0x80, "data1": 60, "data2": 0, "time": "2024-01-01T00:00:00.5Z"},
		{"status": 0x90, "data1": 61, "data2": 100, "time": "2024-01-01T00:00:01Z"},
		{"status": 0x80, "data1": 61, "data2": 0, "time": "2024-01-01T00:00:01.5Z"},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"buffered":2`)

	w = do(t, r, http.MethodGet, base+"/capture/notes?keyFilter=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var captured struct{ Notes []theory.Note }
	decode(t, w, &captured)
	require.Len(t, captured.Notes, 1)
	assert.Equal(t, 60, captured.Notes[0].Pitch)

	w = do(t, r, http.MethodGet, base+"/export/capture?format=midi&genre=amb", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio/midi", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "_AMB_capture.mid")
	clip, err := converter.NewMIDIConverter().ParseMIDI(w.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, clip.Notes, 2)

	w = do(t, r, http.MethodGet, base+"/export/melody", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = do(t, r, http.MethodGet, base+"/export/capture?format=syx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, base+"/export/drums", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, base+"/capture", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, base+"/capture/notes", nil)
	assert.Contains(t, w.Body.String(), `"notes":[]`)
}

func TestQuantizeMIDIUpload(t *testing.T) {
	r := setupRouter(t)

	src, err := converter.NewMIDIConverter().GenerateMIDI(&converter.Clip{
		Name:  "riff",
		Tempo: 120,
		Notes: []theory.Note{
			{Pitch: 61, Position: 0, Length: 1, Velocity: 100},
			{Pitch: 63, Position: 4, Length: 1, Velocity: 100},
		},
	})
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "riff.mid")
	require.NoError(t, err)
	_, err = part.Write(src)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/quantize/midi?root=C&scale=Major", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "riff_quantized.mid")
	clip, err := converter.NewMIDIConverter().ParseMIDI(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, clip.Notes, 2)
	assert.Equal(t, 60, clip.Notes[0].Pitch)
	assert.Equal(t, 62, clip.Notes[1].Pitch)

	w = do(t, r, http.MethodPost, "/api/v1/quantize/midi", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
