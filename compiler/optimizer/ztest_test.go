package optimizer_test

import (
	"testing"

	"github.com/brimdata/vdb/ztest"
)

func TestZTest(t *testing.T) { ztest.Run(t, "testdata/ztest") }
