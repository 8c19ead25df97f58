package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hako/durafmt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cbegin/vpiano-go"
	"github.com/cbegin/vpiano-go/internal/config"
	"github.com/cbegin/vpiano-go/internal/debug"
	"github.com/cbegin/vpiano-go/internal/melody"
	"github.com/cbegin/vpiano-go/internal/pitch"
	"github.com/cbegin/vpiano-go/internal/session"
)

const (
	windowW    = 1100
	windowH    = 520
	minWindowW = 900
	minWindowH = 460

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale
)

var (
	bgColor        = color.RGBA{192, 192, 192, 255}
	panelColor     = color.RGBA{192, 192, 192, 255}
	borderColor    = color.RGBA{128, 128, 128, 255}
	highlightColor = color.RGBA{40, 168, 72, 255}
	sunkenBgColor  = color.RGBA{24, 24, 32, 255}
	whiteKeyColor  = color.RGBA{240, 240, 232, 255}
	blackKeyColor  = color.RGBA{20, 20, 24, 255}
	// sharps light up in a different shade than naturals
	accidentalLitColor = color.RGBA{24, 112, 48, 255}
	pedalOnColor       = color.RGBA{0, 128, 0, 255}

	bevelLight  = color.RGBA{255, 255, 255, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}
)

var titleCase = cases.Title(language.English)

var (
	keyChoices   = append([]string{melody.Random}, pitch.NoteNames...)
	scaleChoices = []string{melody.Random, melody.Major, melody.Minor}
	scaleLabels  = map[string]string{melody.Random: "random", melody.Major: "major", melody.Minor: "minor"}
)

// keyLight tracks the color of one on-screen key.
type keyLight struct {
	lit       bool
	fadeStart time.Time
	fadeDur   time.Duration
}

func (k keyLight) level(now time.Time) float64 {
	if k.lit {
		return 1
	}
	if k.fadeDur <= 0 || k.fadeStart.IsZero() {
		return 0
	}
	t := float64(now.Sub(k.fadeStart)) / float64(k.fadeDur)
	if t >= 1 {
		return 0
	}
	// ease out
	return (1 - t) * (1 - t)
}

type game struct {
	cfg     *config.Config
	sess    *session.Session
	piano   *vpiano.Piano
	events  <-chan vpiano.Event
	lights  map[string]*keyLight
	pedal   bool
	showKey bool

	keyIdx   int
	scaleIdx int
	notes    int

	melodyText string
	keyText    string
	mouseKey   string

	status    string
	statusErr bool

	textCache map[string]*ebiten.Image
	viewW     int
	viewH     int
}

func newGame(cfg *config.Config, sess *session.Session) *game {
	g := &game{
		cfg:       cfg,
		sess:      sess,
		piano:     sess.Piano,
		events:    sess.Piano.Watch(),
		lights:    make(map[string]*keyLight, pitch.Len()),
		showKey:   cfg.Piano.ShowKey,
		keyIdx:    indexOf(keyChoices, cfg.Melody.Key),
		scaleIdx:  indexOf(scaleChoices, cfg.Melody.Scale),
		notes:     cfg.Melody.Notes,
		status:    "Ready",
		textCache: make(map[string]*ebiten.Image, 256),
		viewW:     windowW,
		viewH:     windowH,
	}
	for _, p := range pitch.All() {
		g.lights[p.Name] = &keyLight{}
	}
	return g
}

func (g *game) Update() error {
	g.pollEvents()
	g.handleKeys()
	g.handleMouse()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layoutRects()

	g.drawButton(screen, l.key, "Key: "+keyLabel(keyChoices[g.keyIdx]))
	g.drawButton(screen, l.scale, "Scale: "+titleCase.String(scaleLabels[scaleChoices[g.scaleIdx]]))
	g.drawButton(screen, l.notes, fmt.Sprintf("Notes: %d", g.notes))
	g.drawButton(screen, l.generate, "Generate")
	g.drawButton(screen, l.play, "Play")
	g.drawButton(screen, l.playScale, "Scale")
	g.drawButton(screen, l.show, "Show")
	g.drawButton(screen, l.showKey, checkLabel("Show key", g.showKey))
	g.drawButton(screen, l.release, "Release: "+titleCase.String(g.cfg.Piano.ReleaseMode))

	g.drawSunkenPanel(screen, l.keyboard)
	g.drawKeyboard(screen, l.keyboard)

	g.drawSunkenPanel(screen, l.info)
	g.drawText(screen, "Melody: "+g.melodyText, l.info.Min.X+8, l.info.Min.Y+8)
	g.drawText(screen, "Key: "+g.keyText, l.info.Min.X+8, l.info.Min.Y+8+lineH)
	g.drawPedal(screen, l.pedal)

	g.drawSunkenPanel(screen, l.status)
	g.drawText(screen, shortenEnd(g.status, (l.status.Dx()-16)/charW), l.status.Min.X+8, l.status.Min.Y+6)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	outsideW = max(outsideW, minWindowW)
	outsideH = max(outsideH, minWindowH)
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				return
			}
			g.apply(ev, time.Now())
		default:
			return
		}
	}
}

func (g *game) apply(ev vpiano.Event, now time.Time) {
	switch ev.Kind {
	case vpiano.EventHighlight:
		if k := g.lights[ev.Pitch]; k != nil {
			k.lit = true
		}
	case vpiano.EventRelease:
		if k := g.lights[ev.Pitch]; k != nil {
			k.lit = false
			k.fadeStart = now
			k.fadeDur = ev.Duration
		}
	case vpiano.EventPedal:
		g.pedal = ev.On
	case vpiano.EventMelodyText:
		g.melodyText = ev.Text
	case vpiano.EventKeyText:
		g.keyText = ev.Text
	}
}

// handleKeys forwards physical key transitions as key codes. Codes that
// are neither pitches, the pedal nor melody digits are ignored by the piano.
func (g *game) handleKeys() {
	for _, b := range keyBindings {
		if inpututil.IsKeyJustPressed(b.key) {
			g.piano.PressCode(b.code)
		}
		if inpututil.IsKeyJustReleased(b.key) {
			g.piano.ReleaseCode(b.code)
		}
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	l := g.layoutRects()

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.mouseKey != "" {
		g.piano.Release(g.mouseKey)
		g.mouseKey = ""
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	switch {
	case pointInRect(mx, my, l.keyboard):
		if name, ok := g.keyAt(mx, my, l.keyboard); ok {
			g.mouseKey = name
			g.piano.Press(name)
		}
	case pointInRect(mx, my, l.key):
		g.keyIdx = (g.keyIdx + 1) % len(keyChoices)
	case pointInRect(mx, my, l.scale):
		g.scaleIdx = (g.scaleIdx + 1) % len(scaleChoices)
	case pointInRect(mx, my, l.notes):
		g.notes = g.notes%melody.MaxLength + 1
	case pointInRect(mx, my, l.generate):
		g.generate()
	case pointInRect(mx, my, l.play):
		g.piano.PlayCurrentMelody()
	case pointInRect(mx, my, l.playScale):
		g.piano.PlayScale()
	case pointInRect(mx, my, l.show):
		g.piano.ShowMelody()
	case pointInRect(mx, my, l.showKey):
		g.showKey = !g.showKey
		g.piano.SetShowKey(g.showKey)
	case pointInRect(mx, my, l.release):
		g.toggleRelease()
	}
}

func (g *game) generate() {
	g.keyText = ""
	m, err := g.piano.GenerateMelody(keyChoices[g.keyIdx], scaleChoices[g.scaleIdx], g.notes)
	if err != nil {
		g.setError(err.Error())
		return
	}
	g.setStatus(fmt.Sprintf("Generated %d notes", len(m.Notes)))
}

func (g *game) toggleRelease() {
	if g.cfg.KillOnRelease() {
		g.cfg.Piano.ReleaseMode = "fade"
		g.piano.SetReleaseMode(vpiano.ReleaseFade)
	} else {
		g.cfg.Piano.ReleaseMode = "kill"
		g.piano.SetReleaseMode(vpiano.ReleaseKill)
	}
}

// saveSelections stores the melody choices for the next start.
func (g *game) saveSelections() {
	g.cfg.Melody.Key = keyChoices[g.keyIdx]
	g.cfg.Melody.Scale = scaleChoices[g.scaleIdx]
	g.cfg.Melody.Notes = g.notes
	g.cfg.Piano.ShowKey = g.showKey
	if err := g.cfg.Save(); err != nil {
		debug.Log("ui", "save config: %v", err)
	}
}

type uiLayout struct {
	key, scale, notes, generate, play, playScale, show, showKey, release image.Rectangle
	keyboard, info, pedal, status                                      image.Rectangle
}

func (g *game) layoutRects() uiLayout {
	const (
		margin = 10
		gap    = 8
		btnH   = 40
	)
	var l uiLayout
	x := margin
	row := func(w int) image.Rectangle {
		r := image.Rect(x, margin, x+w, margin+btnH)
		x += w + gap
		return r
	}
	l.key = row(140)
	l.scale = row(200)
	l.notes = row(130)
	l.generate = row(130)
	l.play = row(70)
	l.playScale = row(80)
	l.show = row(80)
	l.showKey = row(170)
	x = margin
	rowY := margin + btnH + gap
	l.release = image.Rect(x, rowY, x+230, rowY+btnH)

	top := rowY + btnH + gap
	statusH := lineH + 12
	infoH := 2*lineH + 20
	bottom := g.viewH - margin
	l.status = image.Rect(margin, bottom-statusH, g.viewW-margin, bottom)
	l.info = image.Rect(margin, l.status.Min.Y-gap-infoH, g.viewW-margin-130, l.status.Min.Y-gap)
	l.pedal = image.Rect(l.info.Max.X+gap, l.info.Min.Y, g.viewW-margin, l.info.Max.Y)
	l.keyboard = image.Rect(margin, top, g.viewW-margin, l.info.Min.Y-gap)
	return l
}

// keyRect returns the on-screen rectangle of a pitch within the keyboard
// area. Black keys sit over the boundary between their white neighbours.
func keyRect(p pitch.Pitch, area image.Rectangle) image.Rectangle {
	inner := area.Inset(4)
	whiteW := float64(inner.Dx()) / float64(whiteCount)
	white := whiteIndex[p.Index]
	if !p.Accidental {
		x0 := inner.Min.X + int(float64(white)*whiteW)
		x1 := inner.Min.X + int(float64(white+1)*whiteW)
		return image.Rect(x0, inner.Min.Y, x1-1, inner.Max.Y)
	}
	center := float64(inner.Min.X) + float64(white)*whiteW
	half := whiteW * 0.3
	return image.Rect(int(center-half), inner.Min.Y, int(center+half), inner.Min.Y+inner.Dy()*6/10)
}

// keyAt finds the pitch under the cursor; black keys win over white ones.
func (g *game) keyAt(mx, my int, area image.Rectangle) (string, bool) {
	for _, accidental := range []bool{true, false} {
		for _, p := range pitch.All() {
			if p.Accidental == accidental && pointInRect(mx, my, keyRect(p, area)) {
				return p.Name, true
			}
		}
	}
	return "", false
}

func (g *game) drawKeyboard(screen *ebiten.Image, area image.Rectangle) {
	now := time.Now()
	for _, accidental := range []bool{false, true} {
		for _, p := range pitch.All() {
			if p.Accidental != accidental {
				continue
			}
			r := keyRect(p, area)
			base, lit := color.Color(whiteKeyColor), color.Color(highlightColor)
			if accidental {
				base, lit = blackKeyColor, accidentalLitColor
			}
			fill := mix(base, lit, g.lights[p.Name].level(now))
			ebitenutil.DrawRect(screen, float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()), fill)
			if !accidental {
				drawSunkenBorder(screen, r)
			}
		}
	}
}

func (g *game) drawPedal(screen *ebiten.Image, rect image.Rectangle) {
	fill := color.Color(sunkenBgColor)
	if g.pedal {
		fill = pedalOnColor
	}
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), fill)
	drawSunkenBorder(screen, rect)
	g.drawText(screen, "Pedal", rect.Min.X+(rect.Dx()-5*charW)/2, rect.Min.Y+(rect.Dy()-lineH)/2)
}

func (g *game) setError(msg string) {
	g.status = msg
	g.statusErr = true
	debug.Log("ui", "error: %s", msg)
}

func (g *game) setStatus(msg string) {
	g.status = msg
	g.statusErr = false
}

func (g *game) drawSunkenPanel(screen *ebiten.Image, rect image.Rectangle) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), sunkenBgColor)
	drawSunkenBorder(screen, rect)
}

func (g *game) drawButton(screen *ebiten.Image, rect image.Rectangle, label string) {
	ebitenutil.DrawRect(screen, float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), panelColor)
	drawBorder(screen, rect)
	label = shortenEnd(label, (rect.Dx()-8)/charW)
	labelW := len([]rune(label)) * charW
	x := rect.Min.X + (rect.Dx()-labelW)/2
	y := rect.Min.Y + (rect.Dy()-lineH)/2
	g.drawText(screen, label, x, y)
}

// drawBorder draws a raised 3D bevel (highlight top/left, shadow bottom/right).
func drawBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, bevelLight)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, bevelLight)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelDarker)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelDarker)
	ebitenutil.DrawRect(screen, x+1, y+h-2, w-3, 1, borderColor)
	ebitenutil.DrawRect(screen, x+w-2, y+1, 1, h-3, borderColor)
}

// drawSunkenBorder draws a sunken 3D bevel (shadow top/left, highlight bottom/right).
func drawSunkenBorder(screen *ebiten.Image, rect image.Rectangle) {
	x := float64(rect.Min.X)
	y := float64(rect.Min.Y)
	w := float64(rect.Dx())
	h := float64(rect.Dy())
	ebitenutil.DrawRect(screen, x, y, w-1, 1, borderColor)
	ebitenutil.DrawRect(screen, x, y+1, 1, h-2, borderColor)
	ebitenutil.DrawRect(screen, x, y+h-1, w, 1, bevelLight)
	ebitenutil.DrawRect(screen, x+w-1, y, 1, h, bevelLight)
}

func (g *game) drawText(screen *ebiten.Image, msg string, x int, y int) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := max(1, len([]rune(msg))*7)
		img = ebiten.NewImage(w, 14)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 1000 {
			g.textCache = make(map[string]*ebiten.Image, 256)
		}
		g.textCache[msg] = img
	}
	opS := &ebiten.DrawImageOptions{}
	opS.GeoM.Scale(textScale, textScale)
	opS.GeoM.Translate(float64(x+2), float64(y+2))
	opS.ColorScale.Scale(0, 0, 0, 1)
	screen.DrawImage(img, opS)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(img, op)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	var (
		sampleDir = flag.String("samples", cfg.Audio.SampleDir, "directory of <pitch>.wav|.mp3|.ogg recordings")
		soundFont = flag.String("soundfont", cfg.Audio.SoundFont, "SoundFont2 file to render the keyboard from")
		debugLog  = flag.Bool("debug", cfg.Debug, "write a debug log to ~/.config/vpiano/debug.log")
	)
	flag.Parse()
	cfg.Audio.SampleDir = *sampleDir
	cfg.Audio.SoundFont = *soundFont
	// the window drives ebiten's audio context
	cfg.Audio.Backend = config.BackendEbiten
	if *debugLog {
		if err := debug.Enable(""); err != nil {
			log.Printf("debug log: %v", err)
		}
		defer debug.Disable()
	}

	start := time.Now()
	sess, err := session.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()

	g := newGame(cfg, sess)
	g.setStatus(fmt.Sprintf("%s, loaded in %s", sess.Source, durafmt.Parse(time.Since(start)).LimitFirstN(2)))
	defer g.saveSelections()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle("vpiano")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
