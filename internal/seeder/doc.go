// Package seeder заполняет пустые тома контейнера содержимым по умолчанию.
//
// Для каждого элемента верхнего уровня в source root проверяется
// соответствующий путь в target root. Если он отсутствует или
// "фактически пуст" (каталог, содержащий только файл-маркер вроде .empty),
// элемент копируется целиком. Иначе он пропускается.
//
// Seeding только добавляет данные и идемпотентен между рестартами:
// существующие файлы никогда не перезаписываются.
//
// Ошибки:
//
// Сбой при копировании одного элемента прерывает обход только этого
// элемента. Остальные элементы обрабатываются независимо, все ошибки
// собираются в одну (go-multierror) и возвращаются вызывающему.
// Вызывающий должен считать любую ошибку фатальной для старта.
package seeder
