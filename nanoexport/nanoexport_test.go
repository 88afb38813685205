package nanoexport_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/nanoexport/nanoexport"
	"github.com/arthur-debert/nanoexport/testutil"
	"github.com/google/go-cmp/cmp"
)

func quietOptions() nanoexport.Options {
	return nanoexport.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSaveWireRequest(t *testing.T) {
	dir := t.TempDir()
	wire := `{
		"export_type": "json",
		"export_path": ` + quote(dir) + `,
		"is_zip": false,
		"data": {"a": "1", "b": "2"}
	}`

	req, err := nanoexport.DecodeRequest([]byte(wire), "json")
	if err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}

	resp := nanoexport.Save(req, quietOptions())
	if diff := cmp.Diff(nanoexport.Response{OK: true, Result: "success"}, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"a.json": "1", "b.json": "2"}, testutil.DirContents(t, dir)); diff != "" {
		t.Errorf("directory mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveArchiveFromYAML(t *testing.T) {
	dir := t.TempDir()
	requestPath := filepath.Join(t.TempDir(), "request.yaml")
	yamlRequest := "export_type: json\n" +
		"export_path: " + quote(dir) + "\n" +
		"is_zip: true\n" +
		"zip_name: bundle\n" +
		"data:\n  a: \"1\"\n  b: \"2\"\n"
	if err := os.WriteFile(requestPath, []byte(yamlRequest), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := nanoexport.LoadRequest(requestPath)
	if err != nil {
		t.Fatalf("failed to load request: %v", err)
	}

	resp := <-nanoexport.SaveAsync(req, quietOptions())
	if !resp.OK {
		t.Fatalf("export failed: %+v", resp)
	}

	got := testutil.ArchiveContents(t, filepath.Join(dir, "bundle.zip"))
	if diff := cmp.Diff(map[string]string{"a.json": "1", "b.json": "2"}, got); diff != "" {
		t.Errorf("archive mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFailureResponse(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	resp := nanoexport.Save(&nanoexport.Request{
		ExportType: "json",
		Path:       missing,
		IsZip:      testutil.Bool(false),
	}, quietOptions())

	if resp.OK || resp.Error != "file-system-error" || resp.Err == nil {
		t.Errorf("unexpected response: %+v", resp)
	}

	encoded, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(encoded) != `{"ok":false,"error":"file-system-error"}` {
		t.Errorf("unexpected wire response: %s", encoded)
	}
}

func TestSaveInvalidOptions(t *testing.T) {
	opts := quietOptions()
	opts.Compression = "lzma"

	resp := nanoexport.Save(&nanoexport.Request{ExportType: "json", Path: t.TempDir(), IsZip: testutil.Bool(false)}, opts)
	if resp.OK {
		t.Error("expected failure for invalid options")
	}
}

func TestDecodeRequestRejectsUnknownFields(t *testing.T) {
	if _, err := nanoexport.DecodeRequest([]byte(`{"export_type":"json","bogus":1}`), ".json"); err == nil {
		t.Error("expected error for unknown JSON field")
	}
	if _, err := nanoexport.DecodeRequest([]byte("export_type: json\nbogus: 1\n"), "yml"); err == nil {
		t.Error("expected error for unknown YAML field")
	}
	if _, err := nanoexport.DecodeRequest([]byte(`{}`), "toml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestDecodeRequestOptionalFields(t *testing.T) {
	req, err := nanoexport.DecodeRequest([]byte(`{"export_type":"json","export_path":"/x","data":{}}`), "json")
	if err != nil {
		t.Fatal(err)
	}
	if req.IsZip != nil || req.ZipName != nil {
		t.Errorf("absent optional fields should stay nil: %+v", req)
	}
}

func TestResponseString(t *testing.T) {
	if got := nanoexport.NewResponse("success", nil).String(); got != "success" {
		t.Errorf("String() = %q", got)
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
