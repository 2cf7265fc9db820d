package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

// FileStorage keeps every collection in memory behind an RWMutex and persists
// each to its own JSON file through a debounced save worker, so bursts of
// writes collapse into one disk write.
type FileStorage struct {
	labels      map[string]*internal.Label               // id -> Label
	assignments map[string]*internal.DayAssignment       // id -> DayAssignment
	dayIndex    map[string]map[string]string             // userID -> date -> assignment id
	exercises   map[string]*internal.ExerciseLog         // id -> ExerciseLog
	names       map[string]*internal.ExerciseName        // id -> ExerciseName
	nameIndex   map[string]map[string]string             // userID -> canonical name -> entry id
	mu          sync.RWMutex

	labelsFile      string
	assignmentsFile string
	exercisesFile   string
	namesFile       string

	saveLabelsChan      chan struct{}
	saveAssignmentsChan chan struct{}
	saveExercisesChan   chan struct{}
	saveNamesChan       chan struct{}
	shutdownChan        chan struct{}
	saveDelay           time.Duration
	logger              internal.Logger
}

func NewFileStorage(labelsFile, assignmentsFile, exercisesFile, namesFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		labels:              make(map[string]*internal.Label),
		assignments:         make(map[string]*internal.DayAssignment),
		dayIndex:            make(map[string]map[string]string),
		exercises:           make(map[string]*internal.ExerciseLog),
		names:               make(map[string]*internal.ExerciseName),
		nameIndex:           make(map[string]map[string]string),
		labelsFile:          labelsFile,
		assignmentsFile:     assignmentsFile,
		exercisesFile:       exercisesFile,
		namesFile:           namesFile,
		saveLabelsChan:      make(chan struct{}, 1),
		saveAssignmentsChan: make(chan struct{}, 1),
		saveExercisesChan:   make(chan struct{}, 1),
		saveNamesChan:       make(chan struct{}, 1),
		shutdownChan:        make(chan struct{}),
		saveDelay:           500 * time.Millisecond,
		logger:              logger,
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load data files: %v", err)
		return nil, err
	}

	go s.saveWorker("labels", s.saveLabelsChan, s.saveLabels)
	go s.saveWorker("assignments", s.saveAssignmentsChan, s.saveAssignments)
	go s.saveWorker("exercises", s.saveExercisesChan, s.saveExercises)
	go s.saveWorker("names", s.saveNamesChan, s.saveNames)

	return s, nil
}

func readJSONFile(path string, out interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) load() error {
	var labels []*internal.Label
	if err := readJSONFile(s.labelsFile, &labels); err != nil {
		return fmt.Errorf("storage: load labels: %w", err)
	}
	var assignments []*internal.DayAssignment
	if err := readJSONFile(s.assignmentsFile, &assignments); err != nil {
		return fmt.Errorf("storage: load assignments: %w", err)
	}
	var exercises []*internal.ExerciseLog
	if err := readJSONFile(s.exercisesFile, &exercises); err != nil {
		return fmt.Errorf("storage: load exercise logs: %w", err)
	}
	var names []*internal.ExerciseName
	if err := readJSONFile(s.namesFile, &names); err != nil {
		return fmt.Errorf("storage: load exercise names: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range labels {
		s.labels[l.ID] = l
	}
	for _, a := range assignments {
		s.assignments[a.ID] = a
		s.indexAssignmentLocked(a)
	}
	for _, e := range exercises {
		s.exercises[e.ID] = e
	}
	for _, n := range names {
		s.names[n.ID] = n
		s.indexNameLocked(n)
	}
	return nil
}

func (s *FileStorage) indexAssignmentLocked(a *internal.DayAssignment) {
	if s.dayIndex[a.UserID] == nil {
		s.dayIndex[a.UserID] = make(map[string]string)
	}
	s.dayIndex[a.UserID][a.Date] = a.ID
}

func (s *FileStorage) indexNameLocked(n *internal.ExerciseName) {
	if s.nameIndex[n.UserID] == nil {
		s.nameIndex[n.UserID] = make(map[string]string)
	}
	s.nameIndex[n.UserID][n.Name] = n.ID
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveLabels() error {
	s.mu.RLock()
	labels := make([]*internal.Label, 0, len(s.labels))
	for _, l := range s.labels {
		labels = append(labels, l)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.labelsFile, labels)
}

func (s *FileStorage) saveAssignments() error {
	s.mu.RLock()
	assignments := make([]*internal.DayAssignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		assignments = append(assignments, a)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.assignmentsFile, assignments)
}

func (s *FileStorage) saveExercises() error {
	s.mu.RLock()
	exercises := make([]*internal.ExerciseLog, 0, len(s.exercises))
	for _, e := range s.exercises {
		exercises = append(exercises, e)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.exercisesFile, exercises)
}

func (s *FileStorage) saveNames() error {
	s.mu.RLock()
	names := make([]*internal.ExerciseName, 0, len(s.names))
	for _, n := range s.names {
		names = append(names, n)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.namesFile, names)
}

func (s *FileStorage) saveWorker(name string, dirty chan struct{}, save func() error) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-dirty:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func markDirty(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Close stops the save workers and flushes all collections synchronously.
func (s *FileStorage) Close() error {
	close(s.shutdownChan)
	if err := s.saveLabels(); err != nil {
		return err
	}
	if err := s.saveAssignments(); err != nil {
		return err
	}
	if err := s.saveExercises(); err != nil {
		return err
	}
	return s.saveNames()
}

// --- LabelRepository ---

func (s *FileStorage) CreateLabel(ctx context.Context, label *internal.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *label
	if cp.Dates == nil {
		cp.Dates = []string{}
	}
	s.labels[cp.ID] = &cp
	markDirty(s.saveLabelsChan)
	return nil
}

func (s *FileStorage) GetLabel(ctx context.Context, userID, id string) (*internal.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.labels[id]
	if !ok || l.UserID != userID {
		return nil, internal.ErrNotFound
	}
	cp := *l
	cp.Dates = append([]string(nil), l.Dates...)
	return &cp, nil
}

func (s *FileStorage) ListLabels(ctx context.Context, userID string) ([]internal.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := []internal.Label{}
	for _, l := range s.labels {
		if l.UserID != userID {
			continue
		}
		cp := *l
		cp.Dates = append([]string(nil), l.Dates...)
		labels = append(labels, cp)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].CreatedAt.After(labels[j].CreatedAt)
	})
	return labels, nil
}

func (s *FileStorage) UpdateLabel(ctx context.Context, label *internal.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.labels[label.ID]
	if !ok || existing.UserID != label.UserID {
		return internal.ErrNotFound
	}
	cp := *label
	if cp.Dates == nil {
		cp.Dates = []string{}
	}
	s.labels[cp.ID] = &cp
	markDirty(s.saveLabelsChan)
	return nil
}

func (s *FileStorage) DeleteLabel(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[id]
	if !ok || l.UserID != userID {
		return internal.ErrNotFound
	}
	delete(s.labels, id)
	markDirty(s.saveLabelsChan)
	return nil
}

func (s *FileStorage) AddLabelDate(ctx context.Context, userID, id, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[id]
	if !ok || l.UserID != userID {
		return internal.ErrNotFound
	}
	for _, d := range l.Dates {
		if d == date {
			return nil
		}
	}
	l.Dates = append(l.Dates, date)
	markDirty(s.saveLabelsChan)
	return nil
}

func (s *FileStorage) RemoveLabelDate(ctx context.Context, userID, id, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[id]
	if !ok || l.UserID != userID {
		return internal.ErrNotFound
	}
	for i, d := range l.Dates {
		if d == date {
			l.Dates = append(l.Dates[:i], l.Dates[i+1:]...)
			markDirty(s.saveLabelsChan)
			return nil
		}
	}
	return nil
}

func (s *FileStorage) ScanLabels(ctx context.Context) ([]internal.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := make([]internal.Label, 0, len(s.labels))
	for _, l := range s.labels {
		cp := *l
		cp.Dates = append([]string(nil), l.Dates...)
		labels = append(labels, cp)
	}
	return labels, nil
}

// --- AssignmentRepository ---

func (s *FileStorage) CreateAssignment(ctx context.Context, a *internal.DayAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.assignments[cp.ID] = &cp
	s.indexAssignmentLocked(&cp)
	markDirty(s.saveAssignmentsChan)
	return nil
}

func (s *FileStorage) FindAssignmentByDate(ctx context.Context, userID, date string) (*internal.DayAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDate, ok := s.dayIndex[userID]
	if !ok {
		return nil, nil
	}
	id, ok := byDate[date]
	if !ok {
		return nil, nil
	}
	a, ok := s.assignments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *FileStorage) SetAssignmentLabel(ctx context.Context, userID, id, labelID string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok || a.UserID != userID {
		return internal.ErrNotFound
	}
	a.LabelID = labelID
	a.UpdatedAt = updatedAt
	markDirty(s.saveAssignmentsChan)
	return nil
}

func (s *FileStorage) DeleteAssignment(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok || a.UserID != userID {
		return internal.ErrNotFound
	}
	delete(s.assignments, id)
	if byDate, ok := s.dayIndex[a.UserID]; ok && byDate[a.Date] == id {
		delete(byDate, a.Date)
	}
	markDirty(s.saveAssignmentsChan)
	return nil
}

func (s *FileStorage) ListAssignmentsInRange(ctx context.Context, userID, from, to string) ([]internal.DayAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments := []internal.DayAssignment{}
	for _, a := range s.assignments {
		// ISO dates compare correctly as strings.
		if a.UserID == userID && a.Date >= from && a.Date <= to {
			assignments = append(assignments, *a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Date < assignments[j].Date
	})
	return assignments, nil
}

func (s *FileStorage) ListAssignmentsByLabel(ctx context.Context, userID, labelID string) ([]internal.DayAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignments := []internal.DayAssignment{}
	for _, a := range s.assignments {
		if a.UserID == userID && a.LabelID == labelID {
			assignments = append(assignments, *a)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].Date < assignments[j].Date
	})
	return assignments, nil
}

// --- ExerciseLogRepository ---

func (s *FileStorage) CreateExerciseLog(ctx context.Context, log *internal.ExerciseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	cp.Sets = append([]internal.ExerciseSet(nil), log.Sets...)
	s.exercises[cp.ID] = &cp
	markDirty(s.saveExercisesChan)
	return nil
}

func (s *FileStorage) GetExerciseLog(ctx context.Context, userID, id string) (*internal.ExerciseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exercises[id]
	if !ok || e.UserID != userID {
		return nil, internal.ErrNotFound
	}
	cp := *e
	cp.Sets = append([]internal.ExerciseSet(nil), e.Sets...)
	return &cp, nil
}

func (s *FileStorage) ListExerciseLogsInRange(ctx context.Context, userID, from, to string) ([]internal.ExerciseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := []internal.ExerciseLog{}
	for _, e := range s.exercises {
		if e.UserID == userID && e.Date >= from && e.Date <= to {
			cp := *e
			cp.Sets = append([]internal.ExerciseSet(nil), e.Sets...)
			logs = append(logs, cp)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs, nil
}

func (s *FileStorage) ListExerciseLogs(ctx context.Context, userID string) ([]internal.ExerciseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := []internal.ExerciseLog{}
	for _, e := range s.exercises {
		if e.UserID == userID {
			cp := *e
			cp.Sets = append([]internal.ExerciseSet(nil), e.Sets...)
			logs = append(logs, cp)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs, nil
}

func (s *FileStorage) UpdateExerciseLog(ctx context.Context, log *internal.ExerciseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.exercises[log.ID]
	if !ok || existing.UserID != log.UserID {
		return internal.ErrNotFound
	}
	cp := *log
	cp.Sets = append([]internal.ExerciseSet(nil), log.Sets...)
	s.exercises[cp.ID] = &cp
	markDirty(s.saveExercisesChan)
	return nil
}

func (s *FileStorage) DeleteExerciseLog(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exercises[id]
	if !ok || e.UserID != userID {
		return internal.ErrNotFound
	}
	delete(s.exercises, id)
	markDirty(s.saveExercisesChan)
	return nil
}

// --- ExerciseNameRepository ---

func (s *FileStorage) UpsertExerciseName(ctx context.Context, name *internal.ExerciseName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if byName, ok := s.nameIndex[name.UserID]; ok {
		if id, ok := byName[name.Name]; ok {
			s.names[id].Display = name.Display
			markDirty(s.saveNamesChan)
			return nil
		}
	}
	cp := *name
	s.names[cp.ID] = &cp
	s.indexNameLocked(&cp)
	markDirty(s.saveNamesChan)
	return nil
}

func (s *FileStorage) ListExerciseNames(ctx context.Context, userID string) ([]internal.ExerciseName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := []internal.ExerciseName{}
	for _, n := range s.names {
		if n.UserID == userID {
			names = append(names, *n)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i].Name < names[j].Name
	})
	return names, nil
}

// --- BatchWriter ---

func (s *FileStorage) ApplyBatch(ctx context.Context, ops []BatchOp) error {
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("storage: batch of %d exceeds limit of %d", len(ops), MaxBatchOps)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		switch {
		case op.Label != nil:
			if op.Delete {
				delete(s.labels, op.Label.ID)
			} else {
				cp := *op.Label
				if cp.Dates == nil {
					cp.Dates = []string{}
				}
				s.labels[cp.ID] = &cp
			}
			markDirty(s.saveLabelsChan)
		case op.Assignment != nil:
			if op.Delete {
				if a, ok := s.assignments[op.Assignment.ID]; ok {
					if byDate, ok := s.dayIndex[a.UserID]; ok && byDate[a.Date] == a.ID {
						delete(byDate, a.Date)
					}
					delete(s.assignments, a.ID)
				}
			} else {
				cp := *op.Assignment
				s.assignments[cp.ID] = &cp
				s.indexAssignmentLocked(&cp)
			}
			markDirty(s.saveAssignmentsChan)
		case op.Exercise != nil:
			if op.Delete {
				delete(s.exercises, op.Exercise.ID)
			} else {
				cp := *op.Exercise
				s.exercises[cp.ID] = &cp
			}
			markDirty(s.saveExercisesChan)
		case op.Name != nil:
			if op.Delete {
				if n, ok := s.names[op.Name.ID]; ok {
					if byName, ok := s.nameIndex[n.UserID]; ok && byName[n.Name] == n.ID {
						delete(byName, n.Name)
					}
					delete(s.names, n.ID)
				}
			} else {
				cp := *op.Name
				s.names[cp.ID] = &cp
				s.indexNameLocked(&cp)
			}
			markDirty(s.saveNamesChan)
		}
	}
	return nil
}

// --- Compile-time assertions ---
var _ LabelRepository = (*FileStorage)(nil)
var _ AssignmentRepository = (*FileStorage)(nil)
var _ ExerciseLogRepository = (*FileStorage)(nil)
var _ ExerciseNameRepository = (*FileStorage)(nil)
var _ BatchWriter = (*FileStorage)(nil)
