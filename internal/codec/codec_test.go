package codec_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"vidgen/internal/codec"
	"vidgen/internal/project"
	"vidgen/internal/services"
)

func richVideo() project.Project {
	title := project.DefaultTextElement()
	title.Text = "Title"
	title.Font = project.Ptr("/usr/share/fonts/truetype/Roboto-Bold.ttf")
	title.Fill = project.Fill{
		Type:           project.FillGradient,
		Color:          "#ff0000",
		GradientColors: []string{"#ff0000", "#00ff00", "#0000ff"},
		GradientAngle:  45,
	}
	title.Position = project.Position{X: project.Px(120), Y: project.Auto()}
	title.BackgroundColor = project.Ptr("#101010")
	title.StrokeColor = project.Ptr("#000000")
	title.StrokeWidth = 3
	title.Shadow = project.Ptr(project.DefaultShadow())
	title.OuterGlow = project.Ptr(project.DefaultOuterGlow())
	title.VerticalOffset = project.Ptr(30.0)
	title.Animation = "fade_in"

	body := project.DefaultTextElement()
	body.Text = "Body"
	body.Fill = project.Fill{Type: project.FillTexture, Color: "#ffffff", ImagePath: project.Ptr("uploads/tex.png")}
	body.Extrude = project.Ptr(project.DefaultExtrude())
	body.Curve = project.Ptr(project.DefaultCurve())

	first := project.DefaultScene()
	first.Duration = project.Ptr(4.0)
	first.Background = project.Background{Type: project.BackgroundImage, Path: "uploads/bg.png"}
	first.TextElements = []project.TextElement{title, body}
	first.Effects = []project.AudioTrack{{Path: "uploads/whoosh.mp3", Volume: 0.4}}
	first.Transition = "slide_left"

	second := project.DefaultScene()
	second.Duration = nil
	second.Narration = &project.AudioTrack{Path: "uploads/voice.mp3", Volume: 1}
	second.Subtitles.Enabled = true
	second.Subtitles.Position = [2]project.Coord{project.At(project.AnchorCenter), project.Px(1500)}
	second.Transition = ""

	p := project.NewVideo()
	p.Template = "tiktok"
	p.Scenes = []project.Scene{first, second}
	p.Music = project.Music{Enabled: true, Path: project.Ptr("uploads/song.mp3"), Volume: 0.6}
	p.Decorations = []project.DecorativeElement{{
		ID:        "logo",
		Path:      project.Ptr("uploads/logo.png"),
		Position:  project.AnchorBottomRight,
		SizeRatio: 0.2,
		OffsetY:   -10,
		Opacity:   0.9,
	}}
	return p
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for name, p := range map[string]project.Project{
		"rich video":    richVideo(),
		"default video": project.NewVideo(),
		"default image": project.NewImage(),
		"empty video":   {Kind: project.KindVideo, Template: "custom", FPS: 30},
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := codec.Encode(p)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := codec.Decode(doc)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, p) {
				t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got, p)
			}
		})
	}
}

func TestRoundTripThroughBytes(t *testing.T) {
	for name, p := range map[string]project.Project{
		"video": richVideo(),
		"image": project.NewImage(),
	} {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Marshal(p)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := codec.ParseDocument(data, "")
			if err != nil {
				t.Fatalf("ParseDocument: %v", err)
			}
			if !reflect.DeepEqual(got, p) {
				t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got, p)
			}
		})
	}
}

func TestEncodeShapesEffects(t *testing.T) {
	p := richVideo()
	data, err := json.Marshal(mustEnvelope(t, p))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`"config":{`,
		`"transition_from_previous":{"type":"slide_left","duration":1}`,
		`"transition_from_previous":null`,
		`"animation":{"type":"fade_in","duration":1}`,
		`"animation":null`,
		`"musica":{`,
		`"effects_audio":[]`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("encoded payload missing %s\n%s", want, text)
		}
	}
	if strings.Contains(text, `"transition":`) {
		t.Fatalf("scalar transition leaked into payload: %s", text)
	}
}

func mustEnvelope(t *testing.T, p project.Project) codec.Envelope {
	t.Helper()
	env, err := codec.NewEnvelope(p)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func TestImportScenario(t *testing.T) {
	input := `{"scenes":[{"duration":5,"background":{"type":"color","color":"#000"},` +
		`"text_elements":[{"text":"Hi"}],"transition_from_previous":{"type":"fade","duration":1.0}}]}`

	p, err := codec.ParseDocument([]byte(input), project.KindVideo)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if len(p.Scenes) != 1 {
		t.Fatalf("expected one scene, got %d", len(p.Scenes))
	}
	scene := p.Scenes[0]
	if scene.Transition != "fade" {
		t.Fatalf("transition = %q, want fade", scene.Transition)
	}
	if scene.Background.Color != "#000" {
		t.Fatalf("background colour = %q", scene.Background.Color)
	}
	el := scene.TextElements[0]
	if el.Text != "Hi" || el.FontSize != 48 || el.Fill.Type != project.FillSolid {
		t.Fatalf("text element defaults not applied: %+v", el)
	}

	ws := codec.EncodeScene(scene)
	want := &codec.Effect{Type: "fade", Duration: 1.0}
	if !reflect.DeepEqual(ws.Transition, want) {
		t.Fatalf("re-encoded transition = %+v, want %+v", ws.Transition, want)
	}
}

func TestParseDocumentEnvelopeAndYAML(t *testing.T) {
	bare, err := codec.Marshal(richVideo())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	wrapped := []byte(`{"config":` + string(bare) + `}`)

	fromBare, err := codec.ParseDocument(bare, project.KindVideo)
	if err != nil {
		t.Fatalf("bare: %v", err)
	}
	fromEnvelope, err := codec.ParseDocument(wrapped, project.KindVideo)
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if !reflect.DeepEqual(fromBare, fromEnvelope) {
		t.Fatal("envelope and bare documents decode differently")
	}

	yamlDoc := `
config:
  template: tiktok
  scenes:
    - duration: 3
      background: {type: color, color: "#111111"}
      text_elements:
        - text: Hello
          animation: {type: fade_in, duration: 1.0}
`
	p, err := codec.ParseDocument([]byte(yamlDoc), "")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if p.Kind != project.KindVideo || p.Template != "tiktok" || p.FPS != project.DefaultFPS {
		t.Fatalf("unexpected project header %+v", p)
	}
	if got := p.Scenes[0].TextElements[0].Animation; got != "fade_in" {
		t.Fatalf("animation = %q", got)
	}
	if p.Scenes[0].Transition != "" {
		t.Fatalf("absent transition should decode empty, got %q", p.Scenes[0].Transition)
	}
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name string
		kind project.Kind
		data string
	}{
		{"missing scenes", project.KindVideo, `{"template":"tiktok"}`},
		{"scenes not a list", project.KindVideo, `{"scenes":{}}`},
		{"image without scene", project.KindImage, `{"config":{"scene":"oops"}}`},
		{"unknown container", "", `{"template":"tiktok"}`},
		{"broken json", "", `{"scenes": [`},
		{"not an object", "", `[1, 2]`},
		{"empty", "", `   `},
		{"wrong field type", project.KindVideo, `{"scenes":[{"duration":"long"}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := codec.ParseDocument([]byte(tc.data), tc.kind)
			if !errors.Is(err, services.ErrMalformedConfig) {
				t.Fatalf("expected ErrMalformedConfig, got %v", err)
			}
			if !reflect.DeepEqual(p, project.Project{}) {
				t.Fatalf("expected no partial project, got %+v", p)
			}
		})
	}
}

func TestDecodeRequiresContainer(t *testing.T) {
	if _, err := codec.Decode(codec.Document{Kind: project.KindVideo, Video: &codec.WireVideo{}}); !errors.Is(err, services.ErrMalformedConfig) {
		t.Fatalf("expected ErrMalformedConfig for nil scenes, got %v", err)
	}
	if _, err := codec.Decode(codec.Document{Kind: project.KindImage, Image: &codec.WireImage{}}); !errors.Is(err, services.ErrMalformedConfig) {
		t.Fatalf("expected ErrMalformedConfig for nil scene, got %v", err)
	}
}

func TestEncodeRejectsBadImage(t *testing.T) {
	p := project.NewImage().AppendScene(project.DefaultImageScene())
	if _, err := codec.Encode(p); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestExportReimportKeepsValuesAndDefaults(t *testing.T) {
	p := richVideo()
	data, err := codec.Export(p, codec.FormatJSON)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Fatalf("export still contains nulls:\n%s", data)
	}
	if !strings.Contains(string(data), `"font": "Roboto-Bold.ttf"`) {
		t.Fatalf("font path not truncated:\n%s", data)
	}

	got, err := codec.ParseDocument(data, "")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	title := got.Scenes[0].TextElements[0]
	if title.Font == nil || *title.Font != "Roboto-Bold.ttf" {
		t.Fatalf("font = %v", title.Font)
	}
	if title.Animation != "fade_in" || got.Scenes[0].Transition != "slide_left" {
		t.Fatalf("effects lost: %q %q", title.Animation, got.Scenes[0].Transition)
	}
	if !reflect.DeepEqual(got.Music, p.Music) || !reflect.DeepEqual(got.Decorations, p.Decorations) {
		t.Fatal("kept fields changed across export")
	}

	// Nulls were elided, so the second scene's duration comes back as the default.
	second := got.Scenes[1]
	if second.Duration == nil || *second.Duration != project.DefaultSceneDuration {
		t.Fatalf("omitted duration = %v, want default", second.Duration)
	}
	if second.Narration == nil || second.Narration.Path != "uploads/voice.mp3" {
		t.Fatalf("narration lost: %+v", second.Narration)
	}
	if second.Transition != "" {
		t.Fatalf("null transition came back as %q", second.Transition)
	}
}

func TestExportYAML(t *testing.T) {
	data, err := codec.Export(richVideo(), codec.FormatYAML)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "template: tiktok") || !strings.Contains(text, "type: slide_left") {
		t.Fatalf("unexpected yaml:\n%s", text)
	}
	back, err := codec.ParseDocument(data, "")
	if err != nil {
		t.Fatalf("re-import yaml: %v", err)
	}
	if back.Scenes[0].Transition != "slide_left" {
		t.Fatalf("transition = %q", back.Scenes[0].Transition)
	}
}

func TestPreviewRequests(t *testing.T) {
	img := project.NewImage()
	img.Scenes[0].TextElements[0].Animation = "zoom"

	req, err := codec.ScenePreviewRequest(img, 0, 10)
	if err != nil {
		t.Fatalf("ScenePreviewRequest: %v", err)
	}
	scene, ok := req.Scene.(codec.WireImageScene)
	if !ok {
		t.Fatalf("image preview scene has type %T", req.Scene)
	}
	if scene.TextElements[0].Animation != nil {
		t.Fatal("image preview must not animate")
	}
	if req.FPS != 10 || req.Decorations == nil {
		t.Fatalf("unexpected preview header %+v", req)
	}
	if img.Scenes[0].TextElements[0].Animation != "zoom" {
		t.Fatal("preview request mutated the project")
	}

	video := richVideo()
	vreq, err := codec.ScenePreviewRequest(video, 0, 10)
	if err != nil {
		t.Fatalf("ScenePreviewRequest: %v", err)
	}
	vscene := vreq.Scene.(codec.WireScene)
	if vscene.TextElements[0].Animation == nil || vscene.Transition == nil {
		t.Fatal("video scene preview keeps effects")
	}
	if _, err := codec.ScenePreviewRequest(video, 5, 10); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for out of range scene, got %v", err)
	}

	text := codec.TextPreviewRequest(video.Scenes[0].TextElements[0])
	if text.Animation != nil || text.Text != "Title" {
		t.Fatalf("unexpected text preview %+v", text)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := codec.ParseFormat("YML"); err != nil || f != codec.FormatYAML {
		t.Fatalf("ParseFormat(YML) = %v, %v", f, err)
	}
	if _, err := codec.ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
	if codec.FormatFromPath("a/b.yaml") != codec.FormatYAML || codec.FormatFromPath("a.json") != codec.FormatJSON {
		t.Fatal("FormatFromPath mismatch")
	}
}
