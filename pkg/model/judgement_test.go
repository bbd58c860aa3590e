package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

func TestVerdictValidate(t *testing.T) {
	gt.NoError(t, model.VerdictKeep.Validate())
	gt.NoError(t, model.VerdictRevise.Validate())
	gt.NoError(t, model.VerdictDrop.Validate())

	err := model.Verdict("maybe").Validate()
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidVerdict))
}

func TestNewJudgementID(t *testing.T) {
	id1 := model.NewJudgementID()
	id2 := model.NewJudgementID()
	gt.NotEqual(t, id1, id2)
	gt.Equal(t, len(id1), 36)
}
