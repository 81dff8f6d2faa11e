package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/james-see/notemaker/pkg/capture"
	"github.com/james-see/notemaker/pkg/chords"
	"github.com/james-see/notemaker/pkg/converter"
	"github.com/james-see/notemaker/pkg/engine"
	"github.com/james-see/notemaker/pkg/melody"
	"github.com/james-see/notemaker/pkg/quantize"
	"github.com/james-see/notemaker/pkg/textnotes"
	"github.com/james-see/notemaker/pkg/theory"
)

// KeyRequest selects a root and scale. Explicit intervals win over the scale
// name; empty fields fall back to the server defaults.
type KeyRequest struct {
	Root      string `json:"root" example:"C"`
	Scale     string `json:"scale" example:"Major"`
	Intervals []int  `json:"intervals,omitempty"`
}

func (s *Server) resolveKey(k KeyRequest) (int, []int, error) {
	if k.Root == "" {
		k.Root = s.cfg.Root
	}
	if k.Scale == "" {
		k.Scale = s.cfg.Scale
	}
	root, err := theory.ParseRoot(k.Root)
	if err != nil {
		return 0, nil, err
	}
	intervals, err := theory.ResolveScale(k.Scale, k.Intervals)
	if err != nil {
		return 0, nil, err
	}
	return root, intervals, nil
}

func (s *Server) keyFromQuery(c *gin.Context) (int, []int, error) {
	return s.resolveKey(KeyRequest{Root: c.Query("root"), Scale: c.Query("scale")})
}

// ChordsRequest generates a progression
type ChordsRequest struct {
	KeyRequest
	Params  chords.Config         `json:"params"`
	Voicing chords.VoicingOptions `json:"voicing"`
}

// MelodyRequest generates a melody
type MelodyRequest struct {
	KeyRequest
	Params melody.Config `json:"params"`
}

// AlternativeRequest varies the last melody
type AlternativeRequest struct {
	Probability float64 `json:"probability" example:"50"`
}

// QuantizeRequest snaps a note list onto a scale
type QuantizeRequest struct {
	KeyRequest
	Notes []theory.Note `json:"notes"`
}

// GridRequest records one step observation
type GridRequest struct {
	KeyRequest
	Step       int  `json:"step"`
	Pitch      int  `json:"pitch"`
	State      int  `json:"state"`
	Continuous bool `json:"continuous"`
}

// TextRequest renders text into notes
type TextRequest struct {
	KeyRequest
	Text        string `json:"text" example:"hello"`
	OctaveStart *int   `json:"octaveStart,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Gap         int    `json:"gap,omitempty"`
	Italic      bool   `json:"italic"`
}

// TempoRequest sets the session tempo, either in BPM or as the host's
// normalized 0..1 value
type TempoRequest struct {
	BPM        float64  `json:"bpm"`
	Normalized *float64 `json:"normalized,omitempty"`
}

// MIDIEvent is one raw message for the capture buffer. A zero time means now.
type MIDIEvent struct {
	Status uint8     `json:"status"`
	Data1  uint8     `json:"data1"`
	Data2  uint8     `json:"data2"`
	Time   time.Time `json:"time"`
}

// EventsRequest pushes raw messages into the capture buffer
type EventsRequest struct {
	Events []MIDIEvent `json:"events"`
}

// ProgressionResponse is a voiced progression
type ProgressionResponse struct {
	Degrees []int         `json:"degrees"`
	Names   []string      `json:"names"`
	Notes   []theory.Note `json:"notes"`
}

func progressionResponse(p chords.Progression) ProgressionResponse {
	names := make([]string, len(p))
	for i, ch := range p {
		names[i] = ch.Name()
	}
	return ProgressionResponse{Degrees: p.Degrees(), Names: names, Notes: p.Notes()}
}

func (s *Server) session(c *gin.Context) (*engine.Session, bool) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return sess, true
}

// createSession godoc
// @Summary Create a session
// @Description Starts a generation session holding the last progression, melody and capture buffer
// @Tags sessions
// @Produce json
// @Success 201 {object} map[string]string
// @Router /sessions [post]
func (s *Server) createSession(c *gin.Context) {
	sess := s.store.Create()
	if s.cfg.Tempo > 0 {
		sess.SetTempo(s.cfg.Tempo)
	}
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

// listSessions godoc
// @Summary List sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /sessions [get]
func (s *Server) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.store.IDs()})
}

// deleteSession godoc
// @Summary Delete a session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /sessions/{id} [delete]
func (s *Server) deleteSession(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// generateChords godoc
// @Summary Generate a chord progression
// @Description Walks the degree graph and stacks a triad per bar, then applies the voicing options
// @Tags chords
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body ChordsRequest true "Key, generation parameters and voicing"
// @Success 200 {object} ProgressionResponse
// @Failure 400 {object} map[string]string
// @Router /sessions/{id}/chords [post]
func (s *Server) generateChords(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req ChordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req.KeyRequest)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cfg := req.Params
	cfg.Root, cfg.Intervals = root, intervals
	if cfg.Bars == 0 {
		cfg.Bars = chords.DefaultBars
	}
	p, err := sess.GenerateChords(cfg, req.Voicing)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, progressionResponse(p))
}

// repaintChords godoc
// @Summary Re-voice the last progression
// @Description Applies new voicing options to the stored progression without regenerating it
// @Tags chords
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body chords.VoicingOptions true "Voicing options"
// @Success 200 {object} ProgressionResponse
// @Failure 409 {object} map[string]string
// @Router /sessions/{id}/chords/repaint [post]
func (s *Server) repaintChords(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var opts chords.VoicingOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := sess.RepaintChords(opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, progressionResponse(p))
}

// generateMelody godoc
// @Summary Generate a melody
// @Tags melody
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body MelodyRequest true "Key and melody parameters"
// @Success 200 {object} melody.Result
// @Failure 400 {object} map[string]string
// @Router /sessions/{id}/melody [post]
func (s *Server) generateMelody(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	req := MelodyRequest{Params: melody.DefaultConfig()}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req.KeyRequest)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cfg := req.Params
	cfg.Root, cfg.Intervals = root, intervals
	res, err := sess.GenerateMelody(cfg)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// alternativeMelody godoc
// @Summary Vary the last melody
// @Description Moves notes one scale step up or down with the given percent probability
// @Tags melody
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body AlternativeRequest true "Probability"
// @Success 200 {object} map[string][]theory.Note
// @Failure 409 {object} map[string]string
// @Router /sessions/{id}/melody/alternative [post]
func (s *Server) alternativeMelody(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req AlternativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	notes, err := sess.AlternativeMelody(req.Probability)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// quantizeNotes godoc
// @Summary Quantize notes to a scale
// @Tags quantize
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body QuantizeRequest true "Key and notes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /sessions/{id}/quantize [post]
func (s *Server) quantizeNotes(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req QuantizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req.KeyRequest)
	if err != nil {
		s.writeError(c, err)
		return
	}
	notes, corrections, err := sess.Quantize(root, intervals, req.Notes)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes, "corrections": corrections})
}

// observeGrid godoc
// @Summary Record a step observation
// @Description Updates the session's step grid; with continuous set the grid is quantized right away
// @Tags quantize
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body GridRequest true "Observation"
// @Success 200 {object} map[string]interface{}
// @Router /sessions/{id}/grid [post]
func (s *Server) observeGrid(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req.KeyRequest)
	if err != nil {
		s.writeError(c, err)
		return
	}
	corrections, err := sess.Observe(req.Step, req.Pitch, req.State, req.Continuous, root, intervals)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrections": nonNil(corrections), "columns": sess.Grid().Columns()})
}

// quantizeGrid godoc
// @Summary Quantize the session grid
// @Tags quantize
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body KeyRequest true "Key"
// @Success 200 {object} map[string]interface{}
// @Router /sessions/{id}/grid/quantize [post]
func (s *Server) quantizeGrid(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	corrections, err := sess.SyncGrid(root, intervals)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"corrections": nonNil(corrections), "columns": sess.Grid().Columns()})
}

func nonNil(c []quantize.Correction) []quantize.Correction {
	if c == nil {
		return []quantize.Correction{}
	}
	return c
}

// renderText godoc
// @Summary Write text into notes
// @Tags text
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body TextRequest true "Text and layout"
// @Success 200 {object} map[string][]theory.Note
// @Failure 400 {object} map[string]string
// @Router /sessions/{id}/text [post]
func (s *Server) renderText(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req.KeyRequest)
	if err != nil {
		s.writeError(c, err)
		return
	}
	opts := textnotes.DefaultOptions(req.Text)
	opts.Root, opts.Intervals, opts.Italic = root, intervals, req.Italic
	if req.OctaveStart != nil {
		opts.OctaveStart = *req.OctaveStart
	}
	if req.Width != 0 {
		opts.Width = req.Width
	}
	if req.Height != 0 {
		opts.Height = req.Height
	}
	if req.Gap != 0 {
		opts.Gap = req.Gap
	}
	notes, err := sess.RenderText(opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes, "steps": textnotes.Width(opts)})
}

// scaleStack godoc
// @Summary Scale note stack
// @Description Returns one muted note per scale pitch at step 0
// @Tags quantize
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body KeyRequest true "Key"
// @Success 200 {object} map[string][]theory.Note
// @Router /sessions/{id}/stack [post]
func (s *Server) scaleStack(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	root, intervals, err := s.resolveKey(req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	notes, err := sess.ScaleStack(root, intervals)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// setTempo godoc
// @Summary Set the session tempo
// @Tags capture
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body TempoRequest true "Tempo"
// @Success 200 {object} map[string]float64
// @Router /sessions/{id}/tempo [post]
func (s *Server) setTempo(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req TempoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	bpm := req.BPM
	if req.Normalized != nil {
		bpm = capture.NormalizedTempo(*req.Normalized)
	}
	sess.SetTempo(bpm)
	c.JSON(http.StatusOK, gin.H{"tempo": sess.Capture().Tempo()})
}

// pushEvents godoc
// @Summary Feed MIDI messages to the capture buffer
// @Tags capture
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body EventsRequest true "Raw messages"
// @Success 200 {object} map[string]int
// @Router /sessions/{id}/capture/events [post]
func (s *Server) pushEvents(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req EventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	buf := sess.Capture()
	for _, e := range req.Events {
		at := e.Time
		if at.IsZero() {
			at = time.Now()
		}
		buf.Push(e.Status, e.Data1, e.Data2, at)
	}
	c.JSON(http.StatusOK, gin.H{"buffered": buf.Len()})
}

// captureNotes godoc
// @Summary Render the capture buffer
// @Description Turns the paired events of the last window into notes, optionally keeping only in-key pitches
// @Tags capture
// @Produce json
// @Param id path string true "Session ID"
// @Param keyFilter query bool false "Drop notes outside the key"
// @Param root query string false "Root for the key filter"
// @Param scale query string false "Scale for the key filter"
// @Success 200 {object} map[string][]theory.Note
// @Router /sessions/{id}/capture/notes [get]
func (s *Server) captureNotes(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	keyFilter, _ := strconv.ParseBool(c.DefaultQuery("keyFilter", "false"))
	root, intervals, err := s.keyFromQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	notes, err := sess.CaptureNotes(keyFilter, root, intervals)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if notes == nil {
		notes = []theory.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes, "tempo": sess.Capture().Tempo()})
}

// clearCapture godoc
// @Summary Empty the capture buffer
// @Tags capture
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/capture [delete]
func (s *Server) clearCapture(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sess.Capture().Clear()
	c.Status(http.StatusNoContent)
}

// exportPart godoc
// @Summary Export a session part
// @Description Downloads the chords, melody or capture of a session as a MIDI or JSON file
// @Tags export
// @Produce application/octet-stream
// @Param id path string true "Session ID"
// @Param part path string true "chords, melody or capture"
// @Param format query string false "midi (default) or json"
// @Param genre query string false "Genre tag for the filename"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /sessions/{id}/export/{part} [get]
func (s *Server) exportPart(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	format := converter.Format(strings.ToLower(c.DefaultQuery("format", string(converter.FormatMIDI))))
	if _, ok := s.conv.GetCodec(format); !ok {
		badRequest(c, "Unsupported format")
		return
	}
	clip, err := sess.Clip(engine.Part(c.Param("part")))
	if err != nil {
		s.writeError(c, err)
		return
	}
	base, err := converter.SuggestFilename(c.DefaultQuery("genre", s.cfg.Genre), time.Now())
	if err != nil {
		s.writeError(c, err)
		return
	}
	result, err := s.conv.Encode(clip, format)
	if err != nil {
		s.writeError(c, err)
		return
	}
	sendFile(c, base+"_"+clip.Name+format.Extension(), format, result.Data)
}

// handleQuantizeMIDI godoc
// @Summary Quantize a MIDI file
// @Description Upload a MIDI file and receive it back with every note snapped onto the scale
// @Tags quantize
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to quantize"
// @Param root query string false "Root note (default from config)"
// @Param scale query string false "Scale name (default from config)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /quantize/midi [post]
func (s *Server) handleQuantizeMIDI(c *gin.Context) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(c, "Failed to read file")
		return
	}
	root, intervals, err := s.keyFromQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	q, err := quantize.New(root, intervals)
	if err != nil {
		s.writeError(c, err)
		return
	}

	clip, err := s.conv.Decode(data, converter.FormatMIDI)
	if err != nil {
		badRequest(c, fmt.Sprintf("Invalid MIDI file: %v", err))
		return
	}
	clip.Notes, _ = q.Notes(clip.Notes)

	result, err := s.conv.Encode(clip, converter.FormatMIDI)
	if err != nil {
		s.writeError(c, err)
		return
	}
	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	if name == "" {
		name = "quantized"
	}
	sendFile(c, name+"_quantized.mid", converter.FormatMIDI, result.Data)
}

func sendFile(c *gin.Context, filename string, format converter.Format, data []byte) {
	contentType := "application/octet-stream"
	switch format {
	case converter.FormatMIDI:
		contentType = "audio/midi"
	case converter.FormatJSON:
		contentType = "application/json"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
