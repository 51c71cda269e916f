// Package mocks provides centralized mock implementations for testing.
//
// Each mock has one function field per interface method, named after the
// method with an Fn suffix. When a field is nil the mock falls back to a small
// in-memory default, so tests only override the calls they care about:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.CreateFn = func(ctx context.Context, task *domain.Task) error {
//	    return store.ErrSourceVoiceNoteTaken
//	}
//
// Store mocks return themselves from WithTx. Pair them with a go-sqlmock
// *sql.DB (see NewTxDB) when the code under test opens transactions.
package mocks
