package escalate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore exchanges tasks and responses with an external worker
// through two JSON files in a shared directory: tasks.json holds an
// array of Task, responses.json a map of task id to Response. Writes
// go through read-append-atomic-rename so concurrent writers from
// separate processes never observe a torn file. The in-process mutex
// only serializes writers within this process; cross-process safety
// comes from the atomic rename.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates the store directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create escalation dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) tasksPath() string     { return filepath.Join(s.dir, "tasks.json") }
func (s *FileStore) responsesPath() string { return filepath.Join(s.dir, "responses.json") }

// Enqueue appends a task to the task file.
func (s *FileStore) Enqueue(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTasks()
	if err != nil {
		return err
	}
	tasks = append(tasks, task)
	return s.writeTasks(tasks)
}

// Tasks returns all tasks currently in the queue file.
func (s *FileStore) Tasks() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTasks()
}

// UpdateStatus rewrites the status of the task with the given id. A
// missing id is not an error; the worker may race with queue trims.
func (s *FileStore) UpdateStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readTasks()
	if err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks[i].Status = status
			break
		}
	}
	return s.writeTasks(tasks)
}

// Respond records a worker's answer for a task id.
func (s *FileStore) Respond(id string, resp Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	responses, err := s.readResponses()
	if err != nil {
		return err
	}
	responses[id] = resp
	return s.writeResponses(responses)
}

// Response looks up the answer for a task id, if one has arrived.
func (s *FileStore) Response(id string) (Response, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	responses, err := s.readResponses()
	if err != nil {
		return Response{}, false, err
	}
	resp, ok := responses[id]
	return resp, ok, nil
}

func (s *FileStore) readTasks() ([]Task, error) {
	data, err := os.ReadFile(s.tasksPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task queue: %w", err)
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// A corrupt queue file is replaced rather than wedging every
		// future escalation.
		return nil, nil
	}
	return tasks, nil
}

func (s *FileStore) writeTasks(tasks []Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encode task queue: %w", err)
	}
	return atomicWrite(s.tasksPath(), data)
}

func (s *FileStore) readResponses() (map[string]Response, error) {
	data, err := os.ReadFile(s.responsesPath())
	if os.IsNotExist(err) {
		return map[string]Response{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read response store: %w", err)
	}
	responses := map[string]Response{}
	if err := json.Unmarshal(data, &responses); err != nil {
		return map[string]Response{}, nil
	}
	return responses, nil
}

func (s *FileStore) writeResponses(responses map[string]Response) error {
	data, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response store: %w", err)
	}
	return atomicWrite(s.responsesPath(), data)
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
