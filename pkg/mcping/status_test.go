package mcping

import (
	"testing"
)

func TestParseJavaStatus_plainDescription(t *testing.T) {
	document := `{
		"version": {"name": "1.19.4", "protocol": 762},
		"players": {"max": 20, "online": 3, "sample": [{"name": "Steve", "id": "00000000-0000-0000-0000-000000000000"}]},
		"description": "A Minecraft Server",
		"favicon": "data:image/png;base64,AAAA",
		"enforcesSecureChat": true
	}`

	info, err := ParseJavaStatus(document)
	if err != nil {
		t.Fatal(err)
	}

	if info.Version == nil || info.Version.Name != "1.19.4" || info.Version.Protocol != 762 {
		t.Errorf("unexpected version: %#v", info.Version)
	}
	if info.Players == nil || info.Players.Online != 3 || info.Players.Max != 20 {
		t.Errorf("unexpected players: %#v", info.Players)
	}
	if len(info.Players.Sample) != 1 || info.Players.Sample[0].Name != "Steve" {
		t.Errorf("unexpected player sample: %#v", info.Players.Sample)
	}
	if info.Description == nil || info.Description.Text != "A Minecraft Server" {
		t.Errorf("bare string description should decode; got %#v", info.Description)
	}
	if info.Favicon != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected favicon: %q", info.Favicon)
	}
	if info.EnforcesSecureChat == nil || !*info.EnforcesSecureChat {
		t.Errorf("enforcesSecureChat should be true")
	}
	if info.PreviewsChat != nil {
		t.Errorf("absent fields should stay nil")
	}
}

func TestParseJavaStatus_styledDescription(t *testing.T) {
	document := `{
		"description": {
			"text": "Hello, ",
			"color": "gold",
			"bold": true,
			"extra": [
				{"text": "world", "obfuscated": true, "extra": [{"text": "!"}]}
			]
		}
	}`

	info, err := ParseJavaStatus(document)
	if err != nil {
		t.Fatal(err)
	}

	desc := info.Description
	if desc == nil {
		t.Fatal("description should be set")
	}
	if desc.Color != "gold" || !desc.Bold {
		t.Errorf("styling attributes should decode; got %#v", desc)
	}
	if len(desc.Extra) != 1 || !desc.Extra[0].Obfuscated {
		t.Errorf("extra list should decode recursively; got %#v", desc.Extra)
	}
	if got := desc.String(); got != "Hello, world!" {
		t.Errorf("want flattened text %q; got %q", "Hello, world!", got)
	}
}

func TestParseJavaStatus_modInfo(t *testing.T) {
	document := `{
		"modinfo": {
			"type": "FML",
			"modList": [
				{"modid": "forge", "version": "40.1.0"},
				{"modid": "jei", "version": "9.7.1"}
			]
		}
	}`

	info, err := ParseJavaStatus(document)
	if err != nil {
		t.Fatal(err)
	}
	if info.ModInfo == nil || info.ModInfo.Type != "FML" {
		t.Fatalf("unexpected mod info: %#v", info.ModInfo)
	}
	if len(info.ModInfo.ModList) != 2 || info.ModInfo.ModList[0].ModID != "forge" {
		t.Errorf("unexpected mod list: %#v", info.ModInfo.ModList)
	}
}

func TestParseJavaStatus_unknownFieldsIgnored(t *testing.T) {
	if _, err := ParseJavaStatus(`{"previewsChat": false, "someFutureField": [1, 2, 3]}`); err != nil {
		t.Errorf("unknown fields should be ignored; got %v", err)
	}
}

func TestParseJavaStatus_invalidJSON(t *testing.T) {
	if _, err := ParseJavaStatus(`{"players":`); err == nil {
		t.Error("want a parse error; got none")
	}
}
