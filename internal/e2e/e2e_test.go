package e2e

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	cli "github.com/mark3labs/swagger2ts/internal/cli"
)

// Swagger 2 document exercising tags, path parameters, a body parameter,
// an inline enum and a cycle between definitions.
const storeSpec = `{
  "swagger": "2.0",
  "info": {"title": "E2E Store", "version": "1.0.0"},
  "paths": {
    "/store/order/{orderId}": {
      "get": {
        "tags": ["store"],
        "parameters": [{"name": "orderId", "in": "path", "required": true, "type": "integer"}],
        "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/Order"}}}
      }
    },
    "/store/order": {
      "post": {
        "tags": ["store"],
        "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Order"}}],
        "responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/Order"}}}
      }
    },
    "/user/login": {
      "get": {
        "tags": ["user"],
        "parameters": [
          {"name": "username", "in": "query", "required": true, "type": "string"},
          {"name": "password", "in": "query", "required": true, "type": "string"}
        ],
        "responses": {"200": {"description": "ok", "schema": {"type": "string"}}}
      }
    }
  },
  "definitions": {
    "Order": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "integer", "format": "int64"},
        "status": {"type": "string", "enum": ["placed", "approved", "delivered"]},
        "parent": {"$ref": "#/definitions/Order"}
      }
    }
  }
}`

func writeTempSpec(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "swagger.json")
	if err := os.WriteFile(p, []byte(storeSpec), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) {
	t.Helper()
	root := cli.NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("cli execute %v: %v", args, err)
	}
}

func digestDir(t *testing.T, dir string) (files []string, sum string) {
	t.Helper()
	var list []string
	h := sha256.New()
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)
		list = append(list, rel)
		// hash path + contents to be robust
		_, _ = h.Write([]byte(rel))
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		_, _ = h.Write(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	sort.Strings(list)
	return list, hex.EncodeToString(h.Sum(nil))
}

func TestE2E_Generate_Deterministic(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	runCLI(t, "generate", "--input", spec, "--out", dir1, "--force")
	runCLI(t, "generate", "--input", spec, "--out", dir2, "--force")

	files1, sum1 := digestDir(t, dir1)
	files2, sum2 := digestDir(t, dir2)
	if !slicesEqual(files1, files2) || sum1 != sum2 {
		t.Fatalf("generated outputs differ between runs\nfiles1=%v\nfiles2=%v\nsum1=%s\nsum2=%s", files1, files2, sum1, sum2)
	}

	want := []string{
		"IHttpClientFactory.ts",
		"store/clients/storeClient.ts",
		"store/models/Order.ts",
		"store/models/OrderType.ts",
		"user/clients/userClient.ts",
	}
	if !slicesEqual(files1, want) {
		t.Fatalf("unexpected files:\n got %v\nwant %v", files1, want)
	}

	// Regenerating over the same tree is a no-op for --check.
	runCLI(t, "generate", "--input", spec, "--out", dir1, "--check")
}

func TestE2E_Generate_Content(t *testing.T) {
	t.Parallel()
	spec := writeTempSpec(t)
	dir := t.TempDir()

	runCLI(t, "generate", "--input", spec, "--out", dir, "--force")

	client := readFile(t, filepath.Join(dir, "store", "clients", "storeClient.ts"))
	for _, want := range []string{
		"import Order from '../models/Order'",
		"export default class storeClient",
		"public '{orderId}Async' = (orderId: number): Promise<Order> =>",
		".get<Order>(`/store/order/${orderId}`, { orderId })",
		"public orderAsync = (body: Order): Promise<Order> =>",
		".post<Order>('/store/order', body)",
	} {
		if !strings.Contains(client, want) {
			t.Fatalf("storeClient.ts missing %q:\n%s", want, client)
		}
	}

	order := readFile(t, filepath.Join(dir, "store", "models", "Order.ts"))
	for _, want := range []string{
		"import OrderType from './OrderType'",
		"    id: number\n",
		"    status?: OrderType\n",
		"    parent?: Order\n",
	} {
		if !strings.Contains(order, want) {
			t.Fatalf("Order.ts missing %q:\n%s", want, order)
		}
	}
	if strings.Contains(order, "import Order from") {
		t.Fatalf("Order.ts must not import itself:\n%s", order)
	}

	enum := readFile(t, filepath.Join(dir, "store", "models", "OrderType.ts"))
	if !strings.Contains(enum, "_placed = 'placed',") || !strings.Contains(enum, "export default OrderType") {
		t.Fatalf("unexpected enum:\n%s", enum)
	}

	user := readFile(t, filepath.Join(dir, "user", "clients", "userClient.ts"))
	if !strings.Contains(user, "loginAsync = ({ username, password }: { username: string; password: string }): Promise<string> =>") {
		t.Fatalf("unexpected userClient.ts:\n%s", user)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
