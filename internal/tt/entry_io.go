package tt

import (
	"encoding/binary"
	"io"

	"github.com/komori-n/KomoringHeights-sub000/internal/hand"
	"github.com/komori-n/KomoringHeights-sub000/internal/matelen"
	"github.com/komori-n/KomoringHeights-sub000/internal/pnum"
	"github.com/komori-n/KomoringHeights-sub000/internal/result"
)

// packHand/unpackHand give each hand.Kind just enough bits to hold its
// maxCount value (pawn needs 5 bits for up to 18; the four 4-capped
// kinds need 3; the two 2-capped kinds need 2), so a whole Hand packs
// into 21 bits.
func packHand(h hand.Hand) uint32 {
	var out uint32
	var shift uint
	kinds := []hand.Kind{hand.Pawn, hand.Lance, hand.Knight, hand.Silver, hand.Gold, hand.Bishop, hand.Rook}
	widths := [7]uint{5, 3, 3, 3, 3, 2, 2}
	for i, k := range kinds {
		out |= uint32(h.Count(k)) << shift
		shift += widths[i]
	}
	return out
}

func unpackHand(bits uint32) hand.Hand {
	var out hand.Hand
	kinds := []hand.Kind{hand.Pawn, hand.Lance, hand.Knight, hand.Silver, hand.Gold, hand.Bishop, hand.Rook}
	widths := [7]uint{5, 3, 3, 3, 3, 2, 2}
	var shift uint
	for i, k := range kinds {
		mask := uint32(1)<<widths[i] - 1
		out = out.Add(k, (bits>>shift)&mask)
		shift += widths[i]
	}
	return out
}

// writeEntry/readEntry give Entry a stable on-disk layout for
// RegularTable.Save/Load, standing in for the original's
// reinterpret_cast<const char*> raw-struct write — Go has no portable
// equivalent to dumping a packed struct's bytes directly, so each field
// is written explicitly in the same order ttentry.hpp documents as the
// entry's 64-byte layout.
func writeEntry(w io.Writer, e *Entry) error {
	fields := []interface{}{
		packHand(e.hand),
		e.amount,
		e.boardKey,
		e.provenLen.AsUint16(),
		e.disprovenLen.AsUint16(),
		uint64(e.pn),
		uint64(e.dn),
		e.minDepth,
		e.possibleRepetition,
		packHand(e.parentHand),
		e.parentBoardKey,
		uint64(e.sumMask),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(r io.Reader, e *Entry) error {
	var handBits, parentHandBits uint32
	var provenLen16, disprovenLen16 uint16
	var pn64, dn64, sumMask64 uint64

	reads := []interface{}{
		&handBits,
		&e.amount,
		&e.boardKey,
		&provenLen16,
		&disprovenLen16,
		&pn64,
		&dn64,
		&e.minDepth,
		&e.possibleRepetition,
		&parentHandBits,
		&e.parentBoardKey,
		&sumMask64,
	}
	for _, f := range reads {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	e.hand = unpackHand(handBits)
	e.parentHand = unpackHand(parentHandBits)
	e.provenLen = matelen.FromUint16(provenLen16)
	e.disprovenLen = matelen.FromUint16(disprovenLen16)
	e.pn = pnum.PnDn(pn64)
	e.dn = pnum.PnDn(dn64)
	e.sumMask = result.BitSet64(sumMask64)
	e.empty = false
	return nil
}
