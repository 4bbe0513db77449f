package command

import "sync"

// Store maps command id to command and maintains the derived per-robot
// command index. The index is append-only: a command id is recorded
// once on first insert and status updates never duplicate it.
type Store struct {
	mu       sync.Mutex
	commands map[string]Command
	byRobot  map[string][]string
}

// NewStore returns an empty command store.
func NewStore() *Store {
	return &Store{
		commands: make(map[string]Command),
		byRobot:  make(map[string][]string),
	}
}

// Upsert inserts or replaces a command. The robot index entry is added
// only when the id is new.
func (s *Store) Upsert(c Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, known := s.commands[c.ID]
	s.commands[c.ID] = c
	if !known {
		s.byRobot[c.RobotID] = append(s.byRobot[c.RobotID], c.ID)
	}
}

// Get returns one command by id.
func (s *Store) Get(id string) (Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.commands[id]
	return c, ok
}

// ForRobot returns up to limit of the robot's most recent commands,
// newest first. limit <= 0 returns the full history.
func (s *Store) ForRobot(robotID string, limit int) []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byRobot[robotID]
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}
	out := make([]Command, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if c, ok := s.commands[ids[i]]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Active returns the robot's most recent non-terminal command, if any.
func (s *Store) Active(robotID string) (Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byRobot[robotID]
	for i := len(ids) - 1; i >= 0; i-- {
		c, ok := s.commands[ids[i]]
		if ok && !c.Terminal() {
			return c, true
		}
	}
	return Command{}, false
}

// Len returns the number of tracked commands.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}
