/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package destination

import (
	"context"

	"github.com/datazip-inc/olake-ticketmatic/types"
)

type Config interface {
	Validate() error
}

type Writer interface {
	GetConfigRef() Config
	Spec() any
	Type() string
	// Check validates the destination config; it is called once per pool before any stream is set up
	Check(ctx context.Context) error
	// Setup prepares a writer for dedicated use by a single stream
	Setup(ctx context.Context, stream types.StreamInterface, opts *Options) error
	// Write persists a batch of records of the stream passed to Setup
	Write(ctx context.Context, records []types.RawRecord) error
	// DropStreams is used to clear the destination before re-writing the stream
	DropStreams(ctx context.Context, selectedStreams []string) error
	Close(ctx context.Context) error
}

// StateEmitter is implemented by writers that carry replication state in
// their own output, interleaved with the records it covers.
type StateEmitter interface {
	EmitState(ctx context.Context, state *types.State) error
}
