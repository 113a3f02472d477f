package pathutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AoNovae/Git-Toolkit/internal/utils/pathutils"
)

const testHomeDirectoryConstant = "/home/builder"

func TestHomeExpanderExpand(testInstance *testing.T) {
	homeExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
	}{
		{name: "bare_tilde", candidatePath: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", candidatePath: "~/mirrors", expectedPath: filepath.Join(testHomeDirectoryConstant, "mirrors")},
		{name: "absolute_path_untouched", candidatePath: "/srv/mirrors", expectedPath: "/srv/mirrors"},
		{name: "relative_path_untouched", candidatePath: "mirrors", expectedPath: "mirrors"},
		{name: "tilde_user_untouched", candidatePath: "~builder/mirrors", expectedPath: "~builder/mirrors"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, homeExpander.Expand(testCase.candidatePath))
		})
	}
}
