// Package directory は社員一覧のキャッシュと、そこから導出する状態
// (絞り込み、ページング、集計) を扱います。
//
// 導出関数はすべて純粋関数で、入力スライスを変更しません。欠損したフィールド
// (部署や入社日) は空値として扱い、パニックしません。
package directory
