// Package system provides host inspection and maintenance tools.
package system

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/oakworth/steward/internal/agent"
)

// InfoTool reports host and process metrics.
type InfoTool struct {
	started time.Time
}

var _ agent.Tool = (*InfoTool)(nil)

// NewInfoTool creates an info tool; uptime is measured from creation.
func NewInfoTool() *InfoTool {
	return &InfoTool{started: time.Now()}
}

func (t *InfoTool) Name() string { return "system_info" }

func (t *InfoTool) Description() string {
	return "Report host metrics: OS, CPU count, memory usage, disk usage, process uptime."
}

func (t *InfoTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *InfoTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	hostname, _ := os.Hostname()
	wd, _ := os.Getwd()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := map[string]any{
		"hostname":       hostname,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"cpus":           runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc_mb":  mem.HeapAlloc / (1 << 20),
		"uptime_seconds": int(time.Since(t.started).Seconds()),
		"workdir":        wd,
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs("/", &stat); err == nil {
		blockSize := uint64(stat.Bsize)
		total := stat.Blocks * blockSize
		free := stat.Bavail * blockSize
		info["disk_total_gb"] = total / (1 << 30)
		info["disk_free_gb"] = free / (1 << 30)
	}

	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("encode info: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: string(payload)}, nil
}

// CacheTool clears a scoped cache directory. The directory itself is
// recreated empty so later writes do not have to check for it.
type CacheTool struct {
	dir string
}

var _ agent.Tool = (*CacheTool)(nil)

// NewCacheTool creates a cache tool over the given directory.
func NewCacheTool(dir string) *CacheTool {
	return &CacheTool{dir: dir}
}

func (t *CacheTool) Name() string { return "clear_cache" }

func (t *CacheTool) Description() string {
	return "Delete all entries from the local cache directory."
}

func (t *CacheTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *CacheTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	if t.dir == "" {
		return &agent.ToolResult{Content: "no cache directory configured", IsError: true}, nil
	}

	entries, err := os.ReadDir(t.dir)
	if os.IsNotExist(err) {
		return &agent.ToolResult{Content: "cache is already empty"}, nil
	}
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("read cache dir: %v", err), IsError: true}, nil
	}

	removed := 0
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(t.dir, entry.Name())); err != nil {
			return &agent.ToolResult{Content: fmt.Sprintf("remove %s: %v", entry.Name(), err), IsError: true}, nil
		}
		removed++
	}
	return &agent.ToolResult{Content: fmt.Sprintf("cleared %d cache entries", removed)}, nil
}
