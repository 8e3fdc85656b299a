// Copyright © 2015-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package i2cd

import (
	"context"
	"strings"
	"testing"

	"github.com/platinasystems/dwi2c/internal/goes"
)

func TestRun(t *testing.T) {
	ctx := goes.WithPath(goes.WithPath(context.Background(), "dwi2c"), Name)
	for _, x := range []struct {
		args []string
		want string
	}{
		{[]string{"extra"}, "unexpected"},
		{[]string{"-interval", "soon"}, "-interval"},
		{[]string{"-addr", "127.0.0.1:-1"}, "dwi2c i2cd: "},
	} {
		err := Main(ctx, x.args...)
		if err == nil {
			t.Errorf("%q: no error", x.args)
		} else if !strings.Contains(err.Error(), x.want) {
			t.Errorf("%q doesn't contain %q", err, x.want)
		}
	}
	done, cancel := context.WithCancel(ctx)
	cancel()
	if err := Main(done, "-addr", "127.0.0.1:0", "-interval", "1s"); err != nil {
		t.Error(err)
	}
}
