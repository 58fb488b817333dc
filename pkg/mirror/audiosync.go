package mirror

import "sync"

// pendingSync remembers the task and id a prepare/activate indication
// must be answered with, once the new stream context has been forwarded
// to the Secondary.
type pendingSync struct {
	task uint16
	id   uint16
}

// AudioSyncTracker tracks the per-audio-source sync handshake between the
// Primary and its local audio subsystem. It is the
// AudioSyncIsReady collaborator wired into an SM's Preconditions.
type AudioSyncTracker struct {
	mu sync.Mutex

	state map[AudioSource]SyncState
	deferred map[AudioSource]pendingSync

	// streamChangeLocked defers target-state kicks while a new stream
	// context is in flight to the Secondary, so the Secondary never
	// starts the mirror with stale parameters.
	streamChangeLocked bool

	// onUnlocked fires once the stream-change lock clears, giving the
	// owning SM a chance to re-evaluate its target.
	onUnlocked func()
}

// NewAudioSyncTracker creates an empty tracker.
func NewAudioSyncTracker() *AudioSyncTracker {
	return &AudioSyncTracker{
		state:    make(map[AudioSource]SyncState),
		deferred: make(map[AudioSource]pendingSync),
	}
}

// OnUnlocked registers the re-evaluation callback.
func (t *AudioSyncTracker) OnUnlocked(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUnlocked = fn
}

// SourceState returns the last known sync state for source.
func (t *AudioSyncTracker) SourceState(source AudioSource) SyncState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state[source]
}

// HandleConnectInd processes SYNC_CONNECT_IND.
func (t *AudioSyncTracker) HandleConnectInd(source AudioSource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state[source] = SyncConnected
}

// HandlePrepareInd processes SYNC_PREPARE_IND, storing task/id so the
// response can be issued later via RespondPrepare.
func (t *AudioSyncTracker) HandlePrepareInd(source AudioSource, task, id uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deferred[source] = pendingSync{task: task, id: id}
	t.streamChangeLocked = true
	t.state[source] = SyncReady
}

// HandleActivateInd processes SYNC_ACTIVATE_IND the same way as prepare:
// the response task/id is stored for later issue.
func (t *AudioSyncTracker) HandleActivateInd(source AudioSource, task, id uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deferred[source] = pendingSync{task: task, id: id}
	t.streamChangeLocked = true
	t.state[source] = SyncActive
}

// RespondPrepare is called once the new stream context has been forwarded
// to the Secondary via peer-signalling; it releases the stream-change
// lock and returns the deferred task/id the caller must reply with.
func (t *AudioSyncTracker) RespondPrepare(source AudioSource) (task, id uint16, ok bool) {
	t.mu.Lock()
	pending, found := t.deferred[source]
	if found {
		delete(t.deferred, source)
	}
	t.streamChangeLocked = len(t.deferred) > 0
	unlocked := !t.streamChangeLocked
	fn := t.onUnlocked
	t.mu.Unlock()

	if unlocked && fn != nil {
		fn()
	}
	return pending.task, pending.id, found
}

// HandleStateInd processes SYNC_STATE_IND.
func (t *AudioSyncTracker) HandleStateInd(source AudioSource, state SyncState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state[source] = state
}

// HandleCodecReconfigured processes SYNC_CODEC_RECONFIGURED_IND: the
// source's context changed shape and must re-sync before it can be
// relied on for target derivation.
func (t *AudioSyncTracker) HandleCodecReconfigured(source AudioSource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state[source] = SyncReady
}

// IsReady reports whether source has reached a state usable for
// target-state derivation and is not mid stream-change (used as the
// AudioSyncIsReady precondition hook for A2DP_CONNECTING).
func (t *AudioSyncTracker) IsReady(source AudioSource) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.streamChangeLocked {
		return false
	}
	s := t.state[source]
	return s == SyncReady || s == SyncActive
}
