package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/nssa-network/nssa-wallet/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultBlockBatchSize = 10

// SyncProgress is emitted to progress handlers after every applied block.
type SyncProgress struct {
	LastSyncedBlock uint64
	TargetBlock     uint64
	ReceivedNotes   int
	SpentNotes      int
}

// SyncService walks the chain from the sync cursor to a target block and
// reconciles the owned private accounts with what it finds. Blocks are
// fetched in batches without holding the wallet lock, then applied one by
// one: the effects of a block and the cursor advance are written together,
// so an interrupted sync resumes from the last applied block.
type SyncService interface {
	// SyncToBlock applies every block up to target and returns the new
	// cursor. On failure the cursor is left at the last applied block.
	SyncToBlock(ctx context.Context, target uint64) (uint64, error)
	SyncToTip(ctx context.Context) (uint64, error)
	LastSyncedBlock(ctx context.Context) (uint64, error)
	CurrentBlockHeight(ctx context.Context) (uint64, error)
	// RegisterProgressHandler adds an observer of sync progress and returns
	// its id. Handlers are called synchronously and must not block.
	RegisterProgressHandler(handler func(SyncProgress)) string
	UnregisterProgressHandler(id string)
}

type syncService struct {
	core           *walletCore
	blockBatchSize int

	// syncLock allows one sync run at a time.
	syncLock *sync.Mutex

	handlersLock *sync.RWMutex
	handlers     map[string]func(SyncProgress)
}

func newSyncService(core *walletCore, blockBatchSize int) SyncService {
	if blockBatchSize <= 0 {
		blockBatchSize = defaultBlockBatchSize
	}
	return &syncService{
		core:           core,
		blockBatchSize: blockBatchSize,
		syncLock:       &sync.Mutex{},
		handlersLock:   &sync.RWMutex{},
		handlers:       make(map[string]func(SyncProgress)),
	}
}

func (s *syncService) SyncToBlock(
	ctx context.Context, target uint64,
) (uint64, error) {
	s.syncLock.Lock()
	defer s.syncLock.Unlock()

	cursor, err := s.lastSyncedBlock(ctx, true)
	if err != nil {
		return 0, err
	}
	if target <= cursor {
		return cursor, nil
	}

	tip, err := s.core.sequencer.GetLastBlockId(ctx)
	if err != nil {
		return cursor, err
	}
	if target > tip {
		return cursor, fmt.Errorf(
			"%w: target %d, tip %d", ErrTargetBeyondTip, target, tip,
		)
	}

	log.Debugf("syncing from block %d to %d", cursor+1, target)

	sc := newScanner(s.core)
	defer sc.close()

	progress := SyncProgress{LastSyncedBlock: cursor, TargetBlock: target}
	for from := cursor + 1; from <= target; from += uint64(s.blockBatchSize) {
		if err := ctx.Err(); err != nil {
			return cursor, err
		}

		to := from + uint64(s.blockBatchSize) - 1
		if to > target {
			to = target
		}
		blocks, err := s.fetchBlocks(ctx, from, to)
		if err != nil {
			log.WithError(err).Warnf("sync stopped at block %d", cursor)
			return cursor, err
		}

		for _, block := range blocks {
			if err := ctx.Err(); err != nil {
				return cursor, err
			}

			report, err := sc.applyBlock(ctx, block)
			if err != nil {
				log.WithError(err).Warnf("sync stopped at block %d", cursor)
				return cursor, err
			}
			cursor = block.BlockId
			if report.skipped {
				continue
			}

			observeBlock(report)
			progress.LastSyncedBlock = cursor
			progress.ReceivedNotes += report.receivedNotes
			progress.SpentNotes += report.spentNotes
			s.notify(progress)
		}
	}

	log.Debugf(
		"synced to block %d: %d notes received, %d notes spent",
		cursor, progress.ReceivedNotes, progress.SpentNotes,
	)
	return cursor, nil
}

func (s *syncService) SyncToTip(ctx context.Context) (uint64, error) {
	if _, err := s.lastSyncedBlock(ctx, true); err != nil {
		return 0, err
	}
	tip, err := s.core.sequencer.GetLastBlockId(ctx)
	if err != nil {
		return 0, err
	}
	return s.SyncToBlock(ctx, tip)
}

func (s *syncService) LastSyncedBlock(ctx context.Context) (uint64, error) {
	return s.lastSyncedBlock(ctx, false)
}

func (s *syncService) CurrentBlockHeight(ctx context.Context) (uint64, error) {
	if err := s.core.withLock(func() error { return nil }); err != nil {
		return 0, err
	}
	return s.core.sequencer.GetLastBlockId(ctx)
}

func (s *syncService) RegisterProgressHandler(handler func(SyncProgress)) string {
	s.handlersLock.Lock()
	defer s.handlersLock.Unlock()

	id := uuid.New().String()
	s.handlers[id] = handler
	return id
}

func (s *syncService) UnregisterProgressHandler(id string) {
	s.handlersLock.Lock()
	defer s.handlersLock.Unlock()

	delete(s.handlers, id)
}

func (s *syncService) lastSyncedBlock(
	ctx context.Context, requireUnlocked bool,
) (uint64, error) {
	var cursor uint64
	if err := s.core.withLock(func() error {
		if requireUnlocked {
			if err := s.core.requireUnlocked(); err != nil {
				return err
			}
		}
		state, err := s.core.repo.WalletStateRepository().GetWalletState(ctx)
		if err != nil {
			return err
		}
		cursor = state.LastSyncedBlock
		return nil
	}); err != nil {
		return 0, err
	}
	return cursor, nil
}

// fetchBlocks concurrently fetches the blocks in range [from, to].
func (s *syncService) fetchBlocks(
	ctx context.Context, from, to uint64,
) ([]*domain.Block, error) {
	blocks := make([]*domain.Block, to-from+1)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range blocks {
		i := i
		blockId := from + uint64(i)
		eg.Go(func() error {
			block, err := s.core.sequencer.GetBlock(egCtx, blockId)
			if err != nil {
				if isTransientError(err) {
					return fmt.Errorf("get block %d: %w", blockId, err)
				}
				// Every block up to the target exists, anything else is a
				// block the wallet cannot decode.
				return fmt.Errorf("%w: get block %d: %w", ErrSyncFailed, blockId, err)
			}
			if block == nil {
				return fmt.Errorf("%w: block %d is missing", ErrSyncFailed, blockId)
			}
			if block.BlockId != blockId {
				return fmt.Errorf(
					"%w: asked block %d, got %d", ErrSyncFailed, blockId, block.BlockId,
				)
			}
			blocks[i] = block
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func isTransientError(err error) bool {
	return errors.Is(err, ports.ErrNetwork) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *syncService) notify(progress SyncProgress) {
	s.handlersLock.RLock()
	handlers := make([]func(SyncProgress), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.handlersLock.RUnlock()

	for _, h := range handlers {
		h(progress)
	}
}
