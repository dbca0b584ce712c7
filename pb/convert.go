package pb

import (
	"fmt"

	"blockfall/tetris"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Snapshot fields.
const (
	fieldWidth    = "width"
	fieldHeight   = "height"
	fieldScore    = "score"
	fieldLines    = "lines"
	fieldGameOver = "game_over"
	fieldStack    = "stack"
	fieldPiece    = "piece"
	fieldKind     = "kind"
	fieldColour   = "colour"
	fieldCells    = "cells"
	fieldLocked   = "locked"
)

// SnapshotToProto encodes a board snapshot.
//
//	{
//	  "width": 10, "height": 20, "score": 0, "lines": 0, "game_over": false,
//	  "stack": [["", "red", ...], ...],
//	  "piece": {"kind": "t", "colour": "purple", "locked": false, "cells": [[4, 2], ...]}
//	}
func SnapshotToProto(s *tetris.Snapshot) (*structpb.Struct, error) {
	stack := make([]any, len(s.Stack))
	for y, r := range s.Stack {
		cells := make([]any, len(r))
		for x, c := range r {
			cells[x] = string(c)
		}
		stack[y] = cells
	}

	var piece any
	if s.Piece != nil {
		cells := make([]any, len(s.Piece.Cells))
		for i, c := range s.Piece.Cells {
			cells[i] = []any{c.X, c.Y}
		}
		piece = map[string]any{
			fieldKind:   string(s.Piece.Kind),
			fieldColour: string(s.Piece.Colour),
			fieldLocked: s.Piece.Locked,
			fieldCells:  cells,
		}
	}

	st, err := structpb.NewStruct(map[string]any{
		fieldWidth:    s.Width,
		fieldHeight:   s.Height,
		fieldScore:    s.Score,
		fieldLines:    s.Lines,
		fieldGameOver: s.GameOver,
		fieldStack:    stack,
		fieldPiece:    piece,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return st, nil
}

// SnapshotFromProto decodes a board snapshot. Missing fields are left zero.
func SnapshotFromProto(st *structpb.Struct) (*tetris.Snapshot, error) {
	f := st.GetFields()
	s := &tetris.Snapshot{
		Width:    int(f[fieldWidth].GetNumberValue()),
		Height:   int(f[fieldHeight].GetNumberValue()),
		Score:    int(f[fieldScore].GetNumberValue()),
		Lines:    int(f[fieldLines].GetNumberValue()),
		GameOver: f[fieldGameOver].GetBoolValue(),
	}

	rows := f[fieldStack].GetListValue().GetValues()
	if len(rows) != s.Height {
		return nil, fmt.Errorf("stack has %d rows, want %d", len(rows), s.Height)
	}
	s.Stack = make([][]tetris.Colour, len(rows))
	for y, r := range rows {
		cells := r.GetListValue().GetValues()
		if len(cells) != s.Width {
			return nil, fmt.Errorf("stack row %d has %d cells, want %d", y, len(cells), s.Width)
		}
		s.Stack[y] = make([]tetris.Colour, len(cells))
		for x, c := range cells {
			s.Stack[y][x] = tetris.Colour(c.GetStringValue())
		}
	}

	p := f[fieldPiece].GetStructValue()
	if p == nil {
		return s, nil
	}
	pf := p.GetFields()
	s.Piece = &tetris.PieceView{
		Kind:   tetris.Kind(pf[fieldKind].GetStringValue()),
		Colour: tetris.Colour(pf[fieldColour].GetStringValue()),
		Locked: pf[fieldLocked].GetBoolValue(),
	}
	for i, c := range pf[fieldCells].GetListValue().GetValues() {
		xy := c.GetListValue().GetValues()
		if len(xy) != 2 {
			return nil, fmt.Errorf("piece cell %d has %d coordinates", i, len(xy))
		}
		s.Piece.Cells = append(s.Piece.Cells, tetris.Point{
			X: int(xy[0].GetNumberValue()),
			Y: int(xy[1].GetNumberValue()),
		})
	}
	return s, nil
}

func ActionToProto(a tetris.Action) *wrapperspb.StringValue {
	return wrapperspb.String(string(a))
}

// ActionFromProto returns the action carried by v, or tetris.ErrInvalidAction.
func ActionFromProto(v *wrapperspb.StringValue) (tetris.Action, error) {
	a := tetris.Action(v.GetValue())
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", tetris.ErrInvalidAction, a)
	}
	return a, nil
}
