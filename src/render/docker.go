// Copyright (c) 2026 Khaled Abbas
//
// This source code is licensed under the Business Source License 1.1.
//
// Change Date: 4 years after the first public release of this version.
// Change License: MIT
//
// On the Change Date, this version of the code automatically converts
// to the MIT License. Prior to that date, use is subject to the
// Additional Use Grant. See the LICENSE file for details.

package render

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/darraghmahns/DES-Demo/src/logging"
)

// DockerRenderer rasterizes PDFs with poppler's pdftoppm inside a reusable
// container. The container is created lazily, kept alive between renders,
// and reaped after an idle timeout.
type DockerRenderer struct {
	cli       *client.Client
	imageName string

	mu                sync.Mutex
	activeContainerID string
	lastUsedAt        time.Time
}

func NewDockerRenderer(cli *client.Client) *DockerRenderer {
	imageName := os.Getenv("RENDER_IMAGE")
	if imageName == "" {
		imageName = "minidocks/poppler:latest"
	}
	return &DockerRenderer{cli: cli, imageName: imageName}
}

// EnsureImage pre-pulls the poppler image so the first render does not pay
// the pull cost.
func (r *DockerRenderer) EnsureImage(ctx context.Context) error {
	reader, err := r.cli.ImagePull(ctx, r.imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull render image %s: %w", r.imageName, err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

func (r *DockerRenderer) getOrCreateContainer(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeContainerID != "" {
		inspect, err := r.cli.ContainerInspect(ctx, r.activeContainerID)
		if err == nil && inspect.State.Running {
			r.lastUsedAt = time.Now()
			return r.activeContainerID, nil
		}
		r.activeContainerID = ""
	}

	memoryMBStr := os.Getenv("RENDER_MEMORY_MB")
	if memoryMBStr == "" {
		memoryMBStr = "512"
	}
	memoryMB, _ := strconv.ParseInt(memoryMBStr, 10, 64)

	cpuLimitStr := os.Getenv("RENDER_CPU_LIMIT")
	if cpuLimitStr == "" {
		cpuLimitStr = "0.5"
	}
	cpuLimit, _ := strconv.ParseFloat(cpuLimitStr, 64)

	resp, err := r.cli.ContainerCreate(ctx, &container.Config{
		Image: r.imageName,
		Cmd:   []string{"sleep", "infinity"},
		Tty:   false,
	}, &container.HostConfig{
		Resources: container.Resources{
			Memory:   memoryMB * 1024 * 1024,
			NanoCPUs: int64(cpuLimit * math.Pow10(9)),
		},
		NetworkMode: "none", // rendering needs no network at all
	}, nil, nil, "")
	if err != nil {
		logging.Log(fmt.Sprintf("failed to create render container: %v", err), slog.LevelError)
		return "", err
	}

	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		r.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		logging.Log(fmt.Sprintf("failed to start render container: %v", err), slog.LevelError)
		return "", err
	}

	r.activeContainerID = resp.ID
	r.lastUsedAt = time.Now()
	logging.Log(fmt.Sprintf("New render container created: %s", resp.ID[:12]), slog.LevelInfo)
	return resp.ID, nil
}

// Render copies the PDF into the container, runs pdftoppm, and reads the
// page PNGs back out as base64 strings in page order.
func (r *DockerRenderer) Render(ctx context.Context, doc []byte) ([]string, error) {
	containerID, err := r.getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name: "doc.pdf",
		Mode: 0644,
		Size: int64(len(doc)),
	}); err != nil {
		return nil, err
	}
	if _, err := tw.Write(doc); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}

	if err := r.cli.CopyToContainer(ctx, containerID, "/", &buf, container.CopyToContainerOptions{}); err != nil {
		logging.Log(fmt.Sprintf("failed to copy document to container: %v", err), slog.LevelError)
		return nil, err
	}

	execResp, err := r.cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		AttachStdout: true,
		AttachStderr: true,
		Cmd: []string{"sh", "-c",
			"rm -rf /pages && mkdir -p /pages && pdftoppm -png -r 120 /doc.pdf /pages/page && rm -f /doc.pdf"},
	})
	if err != nil {
		return nil, fmt.Errorf("create render exec: %w", err)
	}

	attach, err := r.cli.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("attach render exec: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("read render output: %w", err)
		}
	}

	inspect, err := r.cli.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect render exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return nil, fmt.Errorf("pdftoppm failed (exit %d): %s", inspect.ExitCode, stderr.String())
	}

	pages, err := r.collectPages(ctx, containerID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.lastUsedAt = time.Now()
	r.mu.Unlock()
	return pages, nil
}

func (r *DockerRenderer) collectPages(ctx context.Context, containerID string) ([]string, error) {
	reader, _, err := r.cli.CopyFromContainer(ctx, containerID, "/pages")
	if err != nil {
		return nil, fmt.Errorf("copy pages from container: %w", err)
	}
	defer reader.Close()

	byName := make(map[string]string)
	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read pages archive: %w", err)
		}
		name := path.Base(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(name, ".png") {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", name, err)
		}
		byName[name] = base64.StdEncoding.EncodeToString(data)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(names)

	pages := make([]string, 0, len(names))
	for _, name := range names {
		pages = append(pages, byName[name])
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("renderer produced no pages")
	}
	return pages, nil
}

// RunReaper removes the render container after it has sat idle for timeout.
func (r *DockerRenderer) RunReaper(ctx context.Context, timeout time.Duration) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.activeContainerID != "" && time.Since(r.lastUsedAt) > timeout {
				logging.Log(fmt.Sprintf("Idle timeout reached for render container %s. Removing...", r.activeContainerID[:12]), slog.LevelInfo)
				id := r.activeContainerID
				r.activeContainerID = ""
				r.mu.Unlock()

				cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				r.cli.ContainerRemove(cleanupCtx, id, container.RemoveOptions{Force: true})
				cancel()
			} else {
				r.mu.Unlock()
			}
		}
	}
}

// Cleanup force-removes the active container on shutdown.
func (r *DockerRenderer) Cleanup(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeContainerID != "" {
		logging.Log(fmt.Sprintf("Cleaning up render container %s...", r.activeContainerID[:12]), slog.LevelInfo)
		r.cli.ContainerRemove(ctx, r.activeContainerID, container.RemoveOptions{Force: true})
		r.activeContainerID = ""
	}
}
