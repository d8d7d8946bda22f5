// Copyright 2026 The WANproxy-Go Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gzipstage

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGzipStageRoundTrip(t *testing.T) {
	s, err := New(map[string]any{"level": 6})
	require.NoError(t, err)
	require.Equal(t, "gzip", s.Name())

	var buf bytes.Buffer
	w := s.WrapWriter(&buf)

	payload := bytes.Repeat([]byte("wanproxy-xcodec-payload "), 200)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.(io.Closer).Close())

	r := s.WrapReader(&buf)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestGzipStageDefaultLevel(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	st := s.(*Stage)
	require.NotZero(t, st.level+100) // DefaultCompression is -1; sanity only
}
